package jobs

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"sbtc-heritage.backend/internal/domain/entities"
	"sbtc-heritage.backend/internal/domain/repositories"
	"sbtc-heritage.backend/internal/infrastructure/blockchain"
)

// ConfirmationPoller tracks the chain tip and settles pending audit
// records once the ledger reports their transactions final.
type ConfirmationPoller struct {
	client   *blockchain.StacksClient
	txLog    repositories.TransactionLogRepository
	interval time.Duration
	batch    int
	stop     chan struct{}

	tipHeight atomic.Uint64
}

func NewConfirmationPoller(client *blockchain.StacksClient, txLog repositories.TransactionLogRepository, interval time.Duration) *ConfirmationPoller {
	return &ConfirmationPoller{
		client:   client,
		txLog:    txLog,
		interval: interval,
		batch:    100,
		stop:     make(chan struct{}),
	}
}

func (p *ConfirmationPoller) Start(ctx context.Context) {
	log.Println("🕐 Starting ledger confirmation poller...")

	// One pass before the first tick so restarts settle quickly.
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Confirmation poller stopped (context cancelled)")
			return
		case <-p.stop:
			log.Println("⏹️ Confirmation poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *ConfirmationPoller) Stop() {
	close(p.stop)
}

// TipHeight returns the most recently observed chain tip, zero until the
// first successful poll.
func (p *ConfirmationPoller) TipHeight() uint64 {
	return p.tipHeight.Load()
}

func (p *ConfirmationPoller) poll(ctx context.Context) {
	height, err := p.client.BlockHeight(ctx)
	if err != nil {
		log.Printf("❌ Error reading chain tip: %v", err)
	} else {
		p.tipHeight.Store(height)
	}

	pending, err := p.txLog.ListPending(ctx, p.batch)
	if err != nil {
		log.Printf("❌ Error fetching pending audit records: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	settled := 0
	for _, tx := range pending {
		select {
		case <-ctx.Done():
			return
		default:
		}

		st, err := p.client.GetTxStatus(ctx, tx.TxRef)
		if err != nil {
			log.Printf("❌ Error checking tx %s: %v", tx.TxRef, err)
			continue
		}

		switch {
		case st.Confirmed:
			if err := p.txLog.SetStatus(ctx, tx.TxRef, entities.TxConfirmed, st.BlockHeight); err != nil {
				log.Printf("❌ Error confirming tx %s: %v", tx.TxRef, err)
				continue
			}
			settled++
		case st.Failed:
			if err := p.txLog.SetStatus(ctx, tx.TxRef, entities.TxFailed, 0); err != nil {
				log.Printf("❌ Error failing tx %s: %v", tx.TxRef, err)
				continue
			}
			settled++
		}
	}

	if settled > 0 {
		log.Printf("✅ Settled %d of %d pending audit records", settled, len(pending))
	}
}
