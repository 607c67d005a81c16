package main

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/fx"

	"github.com/pollere/DNMP/internal/dlog"
	"github.com/pollere/DNMP/pkg/syncps"
	"github.com/pollere/DNMP/pkg/wirename"
)

var logger = dlog.Named("syncps-demo")

type demoConfig struct {
	topic    wirename.Name
	count    int
	interval time.Duration
}

// demo wires two engines, a publisher and a subscriber, over a shared
// in-process transport.
type demo struct {
	cfg      demoConfig
	bus      *syncps.SimBus
	producer *syncps.Engine
	consumer *syncps.Engine
	received chan *syncps.Publication
	ticker   *time.Ticker
	done     chan struct{}
}

func newDemo(cfg demoConfig) (*demo, error) {
	bus := syncps.NewSimBus()
	syncPrefix := wirename.New("syncps-demo")

	isExpired := syncps.DefaultIsExpired(syncps.DefaultConfig())

	producer, err := syncps.New(bus.NewTransport(), syncPrefix, isExpired, syncps.DefaultFilterPubs)
	if err != nil {
		return nil, err
	}
	consumer, err := syncps.New(bus.NewTransport(), syncPrefix, isExpired, syncps.DefaultFilterPubs)
	if err != nil {
		return nil, err
	}

	d := &demo{
		cfg:      cfg,
		bus:      bus,
		producer: producer,
		consumer: consumer,
		received: make(chan *syncps.Publication, 64),
		done:     make(chan struct{}),
	}

	bus.Do(func() {
		consumer.SubscribeTo(cfg.topic, func(p *syncps.Publication) {
			d.received <- p
		})
	})

	return d, nil
}

func (d *demo) start(ctx context.Context) error {
	var startErr error
	d.bus.Do(func() {
		if err := d.producer.Start(ctx); err != nil {
			startErr = err
			return
		}
		startErr = d.consumer.Start(ctx)
	})
	if startErr != nil {
		return startErr
	}

	go d.logDeliveries()
	go d.publishLoop()
	return nil
}

func (d *demo) stop(context.Context) error {
	close(d.done)
	var stopErr error
	d.bus.Do(func() {
		_ = d.producer.Stop()
		stopErr = d.consumer.Stop()
	})
	return stopErr
}

func (d *demo) publishLoop() {
	d.ticker = time.NewTicker(d.cfg.interval)
	defer d.ticker.Stop()

	for i := 0; i < d.cfg.count; i++ {
		select {
		case <-d.done:
			return
		case <-d.ticker.C:
			n := i
			d.bus.Do(func() {
				pub := syncps.NewPublication(d.cfg.topic.Append(wirename.Component(strconv.Itoa(n))), []byte("payload"))
				if err := d.producer.Publish(pub); err != nil {
					logger.Warn("publish failed", "error", err)
				}
			})
		}
	}
}

func (d *demo) logDeliveries() {
	for {
		select {
		case <-d.done:
			return
		case p := <-d.received:
			logger.Info("delivered", "name", p.Name().String())
		}
	}
}

func registerLifecycle(lc fx.Lifecycle, d *demo) {
	lc.Append(fx.Hook{
		OnStart: d.start,
		OnStop:  d.stop,
	})
}
