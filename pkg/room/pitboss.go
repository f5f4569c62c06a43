package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"riverroom-server/pkg/history"
	"riverroom-server/pkg/table"
	"riverroom-server/pkg/wallet"
)

// PitBoss is responsible for dispatching players to tables. Each live table
// has exactly one dealer, and the dealer keeps its shift even when the last
// client disconnects since seated players still have chips on the table.
type PitBoss struct {
	wallet      wallet.Wallet
	history     history.Store
	turnTimeout time.Duration

	dealers map[uuid.UUID]*Dealer
	lock    sync.RWMutex

	connect    chan *Client
	disconnect chan *Client
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(w wallet.Wallet, store history.Store, turnTimeout time.Duration) *PitBoss {
	return &PitBoss{
		wallet:      w,
		history:     store,
		turnTimeout: turnTimeout,
		dealers:     make(map[uuid.UUID]*Dealer),
		connect:     make(chan *Client, 256),
		disconnect:  make(chan *Client, 256),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			logrus.WithField("player", client.String()).Debug("client connected")
			dealer, found := p.Dealer(client.tableID)
			if !found {
				logrus.WithField("uuid", client.tableID).Error("table not found")
				go func() { client.Close <- "table not found" }()
				continue
			}

			dealer.AddClient(client)
		case client := <-p.disconnect:
			logrus.WithField("player", client.String()).Debug("client disconnected")
			dealer, found := p.Dealer(client.tableID)
			if !found {
				continue
			}

			dealer.RemoveClient(client)
		}
	}
}

// CreateTable opens a new table and puts a dealer on it
func (p *PitBoss) CreateTable(tbl *table.Table) *Dealer {
	dealer := NewDealer(p, tbl, p.wallet, p.history, p.turnTimeout)
	dealer.StartShift()

	p.lock.Lock()
	p.dealers[tbl.ID] = dealer
	p.lock.Unlock()

	return dealer
}

// Dealer returns the dealer for the table, if the table is live
func (p *PitBoss) Dealer(tableID uuid.UUID) (*Dealer, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	dealer, found := p.dealers[tableID]
	return dealer, found
}

// Occupancies returns the lobby listing for every live table
func (p *PitBoss) Occupancies() []*table.Occupancy {
	p.lock.RLock()
	dealers := make([]*Dealer, 0, len(p.dealers))
	for _, dealer := range p.dealers {
		dealers = append(dealers, dealer)
	}
	p.lock.RUnlock()

	occupancies := make([]*table.Occupancy, 0, len(dealers))
	for _, dealer := range dealers {
		// a dealer may end its shift between the snapshot and this call
		if occupancy := dealer.Occupancy(); occupancy != nil {
			occupancies = append(occupancies, occupancy)
		}
	}

	return occupancies
}

// ErrTableNotFound is returned when no dealer is on the table
var ErrTableNotFound = errors.New("table not found")

// DeleteTable force-ends any hand in progress, refunds every seat, and takes
// the dealer off the table
func (p *PitBoss) DeleteTable(ctx context.Context, tableID uuid.UUID) error {
	dealer, found := p.Dealer(tableID)
	if !found {
		return ErrTableNotFound
	}

	errCh := make(chan error, 1)
	dealer.execInRunLoop <- func() {
		err := dealer.table.ForceEnd(ctx, p.wallet)
		if err == nil {
			dealer.broadcast(&Response{Key: "tableEnded"})
		}
		errCh <- err
	}

	if err := <-errCh; err != nil {
		return err
	}

	p.removeDealer(dealer)
	return nil
}

// removeDealer takes a dealer off a terminated table
func (p *PitBoss) removeDealer(d *Dealer) {
	p.lock.Lock()
	delete(p.dealers, d.table.ID)
	p.lock.Unlock()

	d.EndShift()
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}
