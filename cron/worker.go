package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"servihub/config"
	"servihub/services/poller"
	"servihub/services/tasks"
	"servihub/upstream"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitRecheckWorker runs the async worker in background. It consumes
// payment:recheck tasks enqueued by the manual Check Status affordance and
// probes the upstream payment-status endpoint out-of-band.
func InitRecheckWorker(base *upstream.Client, mgr *poller.Manager) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRecheckQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePaymentRecheck, handleRecheckTask(base, mgr))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[RecheckWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RecheckWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RecheckWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleRecheckTask(base *upstream.Client, mgr *poller.Manager) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.RecheckPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[RecheckHandler] Invalid payload: %v", err)
			return err
		}

		probe, err := base.WithToken(p.Token).PaymentStatus(ctx, p.BookingID)
		if err != nil {
			log.Printf("[RecheckHandler] Probe failed for booking %s: %v", p.BookingID, err)
			return err
		}

		log.Printf("[RecheckHandler] Booking %s payment status: %s", p.BookingID, probe.Payment.Status)
		mgr.Bump(ctx, p.SessionKey, p.BookingID, probe.Payment.Status)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRecheckQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[RecheckWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
