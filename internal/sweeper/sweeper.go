package sweeper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Kosench/go-link-shortener/internal/model"
)

// Store - минимальная возможность хранилища, нужная sweeper'у.
type Store interface {
	List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error)
	Delete(ctx context.Context, shortURL string) error
}

// Sweeper - единственная фоновая задача процесса: периодически
// проходит по всем ссылкам и удаляет просроченные.
//
// Полный скан без транзакционной изоляции от живых запросов - удаление
// ссылки, по которой прямо сейчас идет редирект, допустимо: инкремент
// кликов после удаления тихо теряется на стороне сервиса.
type Sweeper struct {
	store         Store
	interval      time.Duration
	retryInterval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func New(store Store, interval, retryInterval time.Duration) *Sweeper {
	return &Sweeper{
		store:         store,
		interval:      interval,
		retryInterval: retryInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start запускает фоновый цикл. Останавливается только через Stop.
func (s *Sweeper) Start() {
	go s.run()
}

// Stop сигналит циклу остановиться и ждет завершения текущего прохода.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)

	for {
		wait := s.interval

		deleted, err := s.RunCycle(context.Background())
		if err != nil {
			// Недоступность хранилища не роняет процесс:
			// логируем и возвращаемся с коротким интервалом
			log.Printf("Sweep cycle failed: %v", err)
			wait = s.retryInterval
		} else if deleted > 0 {
			log.Printf("Sweep removed %d expired links", deleted)
		}

		select {
		case <-s.stop:
			return
		case <-time.After(wait):
		}
	}
}

// RunCycle выполняет один проход: сканирует все ссылки и удаляет
// просроченные. Возвращает число удаленных. Неудача одного удаления
// не прерывает остаток прохода.
func (s *Sweeper) RunCycle(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	links, err := s.store.List(ctx, model.LinkFilter{})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i := range links {
		link := &links[i]
		if !link.Expired(now) {
			continue
		}

		if err := s.store.Delete(ctx, link.ShortURL); err != nil {
			log.Printf("Failed to delete expired link %s: %v", link.ShortURL, err)
			continue
		}
		deleted++
	}

	return deleted, nil
}
