package job

import (
	"context"
	"sync"
	"time"

	"wallet/internal/model"

	"go.uber.org/zap"
)

// Sender hands one receipt to a delivery channel.
type Sender interface {
	Send(ctx context.Context, receipt *model.Receipt) error
}

// Dispatcher delivers receipts on a fixed pool of workers. Delivery is at most once:
// a receipt that fails or does not fit in the queue is logged and dropped.
type Dispatcher struct {
	sender      Sender
	log         *zap.Logger
	queue       chan *model.Receipt
	workers     int
	sendTimeout time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewDispatcher(sender Sender, workers, queueSize int, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		log:         log.Named("notifier"),
		queue:       make(chan *model.Receipt, queueSize),
		workers:     workers,
		sendTimeout: 5 * time.Second,
		stopCh:      make(chan struct{}),
	}
}

// Notify never blocks.
func (d *Dispatcher) Notify(receipt *model.Receipt) bool {
	select {
	case <-d.stopCh:
		d.log.Warn("dispatcher stopped, receipt dropped", zap.String("key", receipt.Key))
		return false
	default:
	}

	select {
	case d.queue <- receipt:
		return true
	default:
		d.log.Warn("receipt queue full, receipt dropped", zap.String("key", receipt.Key))
		return false
	}
}

// Start launches the workers and returns. They run until ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info("dispatcher started", zap.Int("workers", d.workers))
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx)
	}
}

// Stop makes the workers deliver what is already queued, then waits for them.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	d.wg.Wait()
	d.log.Info("dispatcher stopped")
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stopCh:
			d.drain(ctx)
			return
		case receipt := <-d.queue:
			d.deliver(ctx, receipt)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case receipt := <-d.queue:
			d.deliver(ctx, receipt)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, receipt *model.Receipt) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(sendCtx, receipt); err != nil {
		d.log.Error("receipt delivery failed",
			zap.String("key", receipt.Key),
			zap.String("subject", receipt.Subject),
			zap.Error(err))
		return
	}
	d.log.Debug("receipt delivered", zap.String("key", receipt.Key), zap.String("template", receipt.Template))
}

// LogSender writes receipts to the log. It stands in when no broker is configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("receipts")}
}

func (s *LogSender) Send(_ context.Context, receipt *model.Receipt) error {
	s.log.Info("receipt",
		zap.String("key", receipt.Key),
		zap.String("recipient", receipt.Recipient),
		zap.String("subject", receipt.Subject),
		zap.String("template", receipt.Template),
		zap.Any("data", receipt.Data))
	return nil
}
