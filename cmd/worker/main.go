package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"campus/internal/attendance"
	"campus/internal/catalog"
	"campus/internal/config"
	"campus/internal/enrollment"
	"campus/internal/queue"
	"campus/internal/store"
)

// Worker consumes reconciliation messages and repairs remaining hours
// from the attendance journal when the inline decrement was missed.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campus:reconcile")
	}

	courses := catalog.NewRepository(db.Client)
	ledger := enrollment.NewRepository(db.Client)
	journal := attendance.NewRepository(db.Client)
	svc := attendance.NewService(journal, ledger, courses, nil)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != attendance.MsgReconcileHours {
			continue
		}

		studentID, courseID, ok := splitPair(string(msg.Body))
		if !ok {
			log.Printf("malformed reconcile message %q", msg.Body)
			continue
		}

		log.Printf("reconciling hours for student=%s course=%s", studentID, courseID)
		if err := svc.ReconcileHours(ctx, studentID, courseID); err != nil {
			log.Printf("reconcile failed for student=%s course=%s: %v", studentID, courseID, err)
			continue
		}
		log.Printf("reconciled student=%s course=%s", studentID, courseID)
	}

	log.Println("worker stopped")
}

func splitPair(body string) (studentID, courseID string, ok bool) {
	i := strings.IndexByte(body, '|')
	if i <= 0 || i == len(body)-1 {
		return "", "", false
	}
	return body[:i], body[i+1:], true
}
