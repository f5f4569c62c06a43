package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"riverroom-server/pkg/history"
	"riverroom-server/pkg/holdem"
	"riverroom-server/pkg/table"
	"riverroom-server/pkg/wallet"
)

// Dealer owns one table. Every mutation of the table or its hand runs on the
// dealer's run loop goroutine, so the table itself needs no locking.
type Dealer struct {
	pitBoss *PitBoss
	table   *table.Table
	wallet  wallet.Wallet
	history history.Store
	logger  logrus.FieldLogger

	clients map[*Client]bool
	lock    sync.RWMutex

	execInRunLoop chan func()
	close         chan bool

	// turnTimeout is how long a player may sit on their turn before the
	// default action is applied for them. Zero disables the clock.
	turnTimeout time.Duration
	// turnToken invalidates outstanding turn timers whenever state changes
	turnToken int64
}

// NewDealer creates a new dealer for the table.
// This is called from a blocking state, so it needs to return quickly.
func NewDealer(pitBoss *PitBoss, tbl *table.Table, w wallet.Wallet, store history.Store, turnTimeout time.Duration) *Dealer {
	return &Dealer{
		pitBoss:       pitBoss,
		table:         tbl,
		wallet:        w,
		history:       store,
		logger:        logrus.WithField("tableId", tbl.ID),
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
		turnTimeout:   turnTimeout,
	}
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

func (d *Dealer) runLoop() {
	d.logger.Debug("creating dealer run loop")
	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			d.logger.Debug("terminating dealer run loop")
			return
		}
	}
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	close(d.close)
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	d.lock.Unlock()

	d.execInRunLoop <- func() {
		client.Send(&Response{
			Key:  "state",
			Data: d.table.State(client.player.ID),
		})
	}
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) {
	d.lock.Lock()
	delete(d.clients, client)
	d.lock.Unlock()
}

// Occupancy returns the table's lobby listing, or nil if the dealer has
// already ended its shift
func (d *Dealer) Occupancy() *table.Occupancy {
	ch := make(chan *table.Occupancy, 1)
	select {
	case d.execInRunLoop <- func() { ch <- d.table.Occupancy() }:
	case <-d.close:
		return nil
	}

	select {
	case occupancy := <-ch:
		return occupancy
	case <-d.close:
		return nil
	}
}

// TableUUID returns the id of the dealer's table
func (d *Dealer) TableUUID() uuid.UUID {
	return d.table.ID
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *PayloadIn) {
	switch msg.Action {
	case "join":
		d.execInRunLoop <- func() {
			chips, ok := intFromPayload(msg.AdditionalData, "chips")
			if !ok {
				c.Send(newErrorResponse(msg.Context, table.UserError("chips is required")))
				return
			}

			if err := d.table.CheckPassword(stringFromPayload(msg.AdditionalData, "password")); err != nil {
				c.Send(newErrorResponse(msg.Context, err))
				return
			}

			seat, err := d.table.Join(context.Background(), c.player.ID, chips, d.wallet)
			if err != nil {
				c.Send(newErrorResponse(msg.Context, err))
				return
			}

			c.Send(OK(msg.Context))
			d.broadcast(&Response{Key: "playerJoined", Data: seat})
			d.afterChange()
		}
	case "leave":
		d.execInRunLoop <- func() {
			playerID := c.player.ID
			if err := d.table.Leave(context.Background(), playerID, d.wallet); err != nil {
				c.Send(newErrorResponse(msg.Context, err))
				return
			}

			c.Send(OK(msg.Context))
			d.broadcast(&Response{Key: "playerLeft", Data: playerID})
			d.afterChange()
		}
	case "sitOut":
		d.execInRunLoop <- func() {
			d.respond(c, msg.Context, d.table.SitOut(c.player.ID))
			d.afterChange()
		}
	case "sitIn":
		d.execInRunLoop <- func() {
			d.respond(c, msg.Context, d.table.SitIn(c.player.ID))
			d.afterChange()
		}
	case "startHand":
		d.execInRunLoop <- func() {
			_, err := d.table.StartHand()
			d.respond(c, msg.Context, err)
			if err == nil {
				d.afterChange()
			}
		}
	case "state":
		d.execInRunLoop <- func() {
			c.Send(&Response{
				Key:     "state",
				Context: msg.Context,
				Data:    d.table.State(c.player.ID),
			})
		}
	case "terminateTable":
		if !c.player.IsSiteAdmin {
			c.Send(newErrorResponse(msg.Context, table.UserError("you do not have the appropriate permission")))
			return
		}

		d.execInRunLoop <- func() {
			if err := d.table.ForceEnd(context.Background(), d.wallet); err != nil {
				c.Send(newErrorResponse(msg.Context, err))
				return
			}

			c.Send(OK(msg.Context))
			d.broadcast(&Response{Key: "tableEnded"})
			d.pitBoss.removeDealer(d)
		}
	default:
		action, err := holdem.ActionFromString(msg.Action)
		if err != nil {
			d.logger.WithField("msg", msg).Warn("unknown message")
			c.Send(newErrorResponse(msg.Context, holdem.ErrInvalidAction))
			return
		}

		d.execInRunLoop <- func() {
			amount, _ := intFromPayload(msg.AdditionalData, "amount")
			if err := d.table.Action(c.player.ID, action, amount); err != nil {
				if !holdem.IsUserError(err) {
					d.logger.WithError(err).Error("could not perform action")
				}

				c.Send(newErrorResponse(msg.Context, err))

				// an integrity abort still produced results that must settle
				d.afterChange()
				return
			}

			c.Send(OK(msg.Context))
			d.afterChange()
		}
	}
}

func (d *Dealer) respond(c *Client, context string, err error) {
	if err != nil {
		c.Send(newErrorResponse(context, err))
		return
	}

	c.Send(OK(context))
}

// afterChange runs after any state mutation: it fans out hand events,
// archives them, settles a finished hand, refreshes every client's view, and
// re-arms the turn clock.
// NOTE: must only be called from the run loop
func (d *Dealer) afterChange() {
	if hand := d.table.Hand(); hand != nil {
		for _, event := range hand.DrainEvents() {
			d.broadcast(&Response{Key: event.Kind(), Data: event})

			if applied, ok := event.(*holdem.ActionAppliedEvent); ok {
				d.recordAction(applied.Record)
			}
		}

		if results := hand.Results(); results != nil {
			d.recordHand(hand, results)

			if _, err := d.table.FinishHand(context.Background(), d.wallet); err != nil {
				d.logger.WithError(err).Error("could not settle hand")
				d.broadcast(&Response{Key: "fault", Data: err.Error()})
			}
		}
	}

	d.sendState()
	d.scheduleTurnTimer()
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendState() {
	for _, client := range d.Clients() {
		client.Send(&Response{
			Key:  "state",
			Data: d.table.State(client.player.ID),
		})
	}
}

func (d *Dealer) broadcast(res *Response) {
	for _, client := range d.Clients() {
		client.Send(res)
	}
}

// recordAction archives an action without blocking the run loop
func (d *Dealer) recordAction(record *holdem.ActionRecord) {
	go func() {
		if err := d.history.RecordAction(context.Background(), d.table.ID, record); err != nil {
			d.logger.WithError(err).Error("could not record action")
		}
	}()
}

// recordHand archives the outcome of a finished hand without blocking the
// run loop
func (d *Dealer) recordHand(hand *holdem.Hand, results *holdem.Results) {
	summary := &history.HandSummary{
		HandID:   hand.ID(),
		TableID:  d.table.ID,
		Seq:      hand.Seq(),
		Payouts:  results.Payouts,
		Aborted:  results.Aborted,
		Finished: time.Now(),
	}

	if results.Category != nil {
		summary.Category = results.Category.String()
	}

	go func() {
		if err := d.history.RecordHand(context.Background(), summary); err != nil {
			d.logger.WithError(err).Error("could not record hand")
		}
	}()
}

// scheduleTurnTimer arms the turn clock for the player now in turn. When it
// fires, the player's default action goes through the same entry point as a
// real one.
// NOTE: must only be called from the run loop
func (d *Dealer) scheduleTurnTimer() {
	if d.turnTimeout <= 0 {
		return
	}

	hand := d.table.Hand()
	if hand == nil {
		return
	}

	playerID, ok := hand.CurrentTurn()
	if !ok {
		return
	}

	d.turnToken++
	token := d.turnToken
	handID := hand.ID()

	time.AfterFunc(d.turnTimeout, func() {
		d.execInRunLoop <- func() {
			if d.turnToken != token {
				return
			}

			hand := d.table.Hand()
			if hand == nil || hand.ID() != handID {
				return
			}

			current, ok := hand.CurrentTurn()
			if !ok || current != playerID {
				return
			}

			action := hand.DefaultAction(playerID)
			d.logger.WithFields(logrus.Fields{
				"playerId": playerID,
				"action":   action,
			}).Info("turn clock expired")

			if err := d.table.Action(playerID, action, 0); err != nil {
				d.logger.WithError(err).Error("could not apply default action")
			}

			d.afterChange()
		}
	})
}
