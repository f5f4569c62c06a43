package potmanager

import (
	"errors"
	"fmt"
	"sort"
)

// ParticipantError is a rejection of a participant's input; no state was mutated
type ParticipantError string

func (p ParticipantError) Error() string {
	return string(p)
}

func newParticipantError(format string, a ...interface{}) ParticipantError {
	return ParticipantError(fmt.Sprintf(format, a...))
}

// ErrHandOver is an error when an action is attempted after the hand ended
var ErrHandOver = errors.New("hand is over")

// ErrRoundOver is an error when the betting round is over
var ErrRoundOver = errors.New("betting round is over")

// ErrNotYourTurn is an error when a participant acts out of turn
var ErrNotYourTurn = ParticipantError("it is not your turn")

type participantInPotMap map[*participantInPot]bool

type pot struct {
	amount            int
	allInParticipants participantInPotMap
}

// PotManager keeps track of bets, turn order, and pot layers for one hand.
// Participants must be seated in order, starting with the seat to the
// dealer's left (the small blind).
type PotManager struct {
	participants map[int64]*participantInPot
	tableOrder   []*participantInPot
	bigBlind     int
	pots         []*pot
	// actionStartIndex is where the action started, or changed (i.e., a raise)
	actionStartIndex int
	// actionAtIndex is who is currently making a decision
	actionAtIndex int
	actionAmount  int
	// lastRaise is the last raise increment; the next raise must be at least this much more
	lastRaise int
	// amountInPlay is how much has been bet or called, but not yet added to the pot
	amountInPlay int
	// committed is the total amount taken from all participants over the hand
	committed int

	// needsPotCalculation should be set to true if we need to recalculate the pot
	needsPotCalculation bool

	// isHandOver will prevent any further action from happening
	isHandOver bool
}

// New instantiates a new PotManager
func New(bigBlind int) *PotManager {
	return &PotManager{
		participants: make(map[int64]*participantInPot),
		tableOrder:   make([]*participantInPot, 0),
		bigBlind:     bigBlind,
		lastRaise:    bigBlind,
		pots:         []*pot{{}},
	}
}

// SeatParticipant adds a participant to the table in the order called
// This method must be called in seating order, starting left of the dealer
func (p *PotManager) SeatParticipant(pt Participant) error {
	if pt.Balance() <= 0 {
		return errors.New("cannot seat participant without chips")
	}

	if _, ok := p.participants[pt.ID()]; ok {
		return errors.New("participant is already seated")
	}

	pip := &participantInPot{
		Participant: pt,
		tableIndex:  len(p.tableOrder),
	}
	p.participants[pt.ID()] = pip
	p.tableOrder = append(p.tableOrder, pip)

	return nil
}

// PostBlind posts a forced bet for the participant, clamped to their stack.
// A short post leaves the participant all-in.
func (p *PotManager) PostBlind(pt Participant, amount int) {
	pip := p.participants[pt.ID()]
	p.adjustParticipant(pip, amount)
}

// StartPreflop must be called after the blinds are posted. The bet to match is
// the big blind even when the big blind was posted short, and the action
// starts at startIndex (the seat after the big blind).
func (p *PotManager) StartPreflop(startIndex int) {
	p.actionAmount = p.bigBlind
	p.lastRaise = p.bigBlind
	p.actionStartIndex = startIndex
	p.actionAtIndex = 0
	p.skipNonActors()
}

// ParticipantFolds handles a fold
func (p *PotManager) ParticipantFolds(pt Participant) error {
	pip, err := p.getActiveParticipantInPot(pt)
	if err != nil {
		return err
	}

	pip.isFolded = true
	p.completeTurn()
	return nil
}

// ParticipantChecks handles a check
func (p *PotManager) ParticipantChecks(pt Participant) error {
	pip, err := p.getActiveParticipantInPot(pt)
	if err != nil {
		return err
	}

	if pip.amountInPlay != p.actionAmount {
		return newParticipantError("you cannot check with an active bet")
	}

	p.completeTurn()
	return nil
}

// ParticipantCalls handles a call. If the shortfall exceeds the participant's
// stack, they are all-in for a partial call.
func (p *PotManager) ParticipantCalls(pt Participant) error {
	pip, err := p.getActiveParticipantInPot(pt)
	if err != nil {
		return err
	}

	if p.actionAmount <= pip.amountInPlay {
		return newParticipantError("you cannot call without an active bet")
	}

	p.adjustParticipant(pip, p.actionAmount)
	p.completeTurn()
	return nil
}

// ParticipantBetsOrRaises will place a bet or a raise for a participant.
// This method only enforces that the bet or raise is above the previous bet or
// raise and within the participant's stack. The minimum-raise rule is enforced
// by the game.
func (p *PotManager) ParticipantBetsOrRaises(pt Participant, newBetOrRaise int) error {
	pip, err := p.getActiveParticipantInPot(pt)
	if err != nil {
		return err
	}

	if newBetOrRaise <= p.actionAmount {
		return newParticipantError("your raise to %d must be greater than the previous bet of %d", newBetOrRaise, p.actionAmount)
	}

	if newBetOrRaise <= pip.amountInPlay {
		return fmt.Errorf("participant has more in play than the new bet or raise")
	}

	if newBetOrRaise > pip.amountInPlay+pip.Balance() {
		return errors.New("bet exceeds participant's stack")
	}

	p.reopenAction(pip, newBetOrRaise)
	p.adjustParticipant(pip, newBetOrRaise)

	p.completeTurn()
	return nil
}

// ParticipantGoesAllIn commits the participant's entire remaining stack. If
// the total exceeds the bet to match it becomes the new bet; an increment
// smaller than the last raise does not lower the minimum raise.
func (p *PotManager) ParticipantGoesAllIn(pt Participant) error {
	pip, err := p.getActiveParticipantInPot(pt)
	if err != nil {
		return err
	}

	target := pip.amountInPlay + pip.Balance()
	if target > p.actionAmount {
		p.reopenAction(pip, target)
	}

	p.adjustParticipant(pip, target)
	p.completeTurn()
	return nil
}

func (p *PotManager) reopenAction(pip *participantInPot, newBetOrRaise int) {
	if increment := newBetOrRaise - p.actionAmount; increment >= p.lastRaise {
		p.lastRaise = increment
	}

	p.actionStartIndex = pip.tableIndex
	p.actionAtIndex = 0
	p.actionAmount = newBetOrRaise
}

// IsParticipantYetToAct returns true if the participant is not in turn and the participant has yet to act
// This also ensures the participant didn't fold and they are not all-in
func (p *PotManager) IsParticipantYetToAct(pt Participant) bool {
	pip, ok := p.participants[pt.ID()]
	if !ok {
		return false
	}

	if !pip.canAct() {
		return false
	}

	// simple formula to see if the player isn't in turn, but they are still yet to act
	check := pip.tableIndex
	if check < p.actionStartIndex {
		check += len(p.tableOrder)
	}

	return check > p.actionStartIndex+p.actionAtIndex
}

// GetCanActParticipantCount returns the number of participants in the hand who didn't fold or go all-in
func (p *PotManager) GetCanActParticipantCount() int {
	count := 0
	for _, pt := range p.tableOrder {
		if pt.canAct() {
			count++
		}
	}

	return count
}

// GetLiveParticipantCount returns the number of participants who have not folded
func (p *PotManager) GetLiveParticipantCount() int {
	count := 0
	for _, pt := range p.tableOrder {
		if !pt.isFolded {
			count++
		}
	}

	return count
}

// GetLiveParticipants returns the participants who have not folded, in table order
func (p *PotManager) GetLiveParticipants() []Participant {
	live := make([]Participant, 0, len(p.tableOrder))
	for _, pt := range p.tableOrder {
		if !pt.isFolded {
			live = append(live, pt.Participant)
		}
	}

	return live
}

func (p *PotManager) adjustParticipant(pip *participantInPot, adjustment int) {
	adjustment -= pip.amountInPlay
	if adjustment >= pip.Balance() {
		adjustment = pip.Balance()
		pip.isAllIn = true
	}

	p.amountInPlay += adjustment
	p.committed += adjustment
	pip.adjustAmountInPlay(adjustment)
	pip.Participant.AdjustBalance(-1 * adjustment)
}

// GetBet returns the current bet to match
func (p *PotManager) GetBet() int {
	return p.actionAmount
}

// GetMinRaise returns the smallest total a raise must reach
func (p *PotManager) GetMinRaise() int {
	return p.actionAmount + p.lastRaise
}

// GetParticipantAllInAmount returns the total the participant could put in play
func (p *PotManager) GetParticipantAllInAmount(pt Participant) int {
	pip, ok := p.participants[pt.ID()]
	if !ok {
		return 0
	}

	return pip.amountInPlay + pip.Balance()
}

// GetParticipantBet returns the participant's bet on the current street
func (p *PotManager) GetParticipantBet(pt Participant) int {
	pip, ok := p.participants[pt.ID()]
	if !ok {
		return 0
	}

	return pip.amountInPlay
}

// IsParticipantFolded returns true if the participant folded
func (p *PotManager) IsParticipantFolded(pt Participant) bool {
	pip, ok := p.participants[pt.ID()]
	return ok && pip.isFolded
}

// IsParticipantAllIn returns true if the participant is all-in
func (p *PotManager) IsParticipantAllIn(pt Participant) bool {
	pip, ok := p.participants[pt.ID()]
	return ok && pip.isAllIn
}

// TotalCommitted returns every chip taken from the participants this hand
func (p *PotManager) TotalCommitted() int {
	return p.committed
}

// IsRoundOver returns true if all eligible participants have acted
func (p *PotManager) IsRoundOver() bool {
	return p.actionAtIndex >= len(p.tableOrder)
}

// GetInTurnParticipant returns the participant who is to act next
// Returns nil if the round is over
func (p *PotManager) GetInTurnParticipant() Participant {
	if p.IsRoundOver() {
		return nil
	}

	return p.tableOrder[p.normalizedActionAtIndex()].Participant
}

// Pots returns a list of pots
func (p *PotManager) Pots() Pots {
	pots := make([]*Pot, len(p.pots))
	for i, pot := range p.pots {
		a := make([]Participant, 0, len(pot.allInParticipants))
		for pip := range pot.allInParticipants {
			a = append(a, pip.Participant)
		}

		pots[i] = &Pot{
			Amount:            pot.amount,
			AllInParticipants: a,
		}
	}

	return pots
}

// PayWinners adjusts the balances for the winners and returns the payouts by
// participant ID. The winners argument is tiers of participants, best hand
// first; ties within a tier split the layer with any odd chips going to the
// seats closest to the dealer's left.
func (p *PotManager) PayWinners(winners [][]Participant) (map[int64]int, error) {
	if !p.isHandOver {
		return nil, errors.New("hand is not over")
	}

	p.needsPotCalculation = true
	p.calculatePot()

	pots := make([]*pot, len(p.pots))

	// shallow-copy
	for i, pot := range p.pots {
		tmp := *pot
		pots[i] = &tmp
	}

	payouts := make(map[int64]int)

MainLoop:
	for _, winnerGroup := range winners {
		// convert to a list of participantInPot objects sorted by the table
		// order so any odd chips go to the seat left of the dealer
		pipWinnerGroup := make([]*participantInPot, len(winnerGroup))
		for i, winner := range winnerGroup {
			pipWinnerGroup[i] = p.participants[winner.ID()]
		}
		sort.Sort(sortByTableIndex(pipWinnerGroup))

		for potIndex, pot := range pots {
			if pot.amount == 0 {
				continue
			}

			share := pot.amount / len(pipWinnerGroup)
			remainder := pot.amount % len(pipWinnerGroup)

			// remove any winners who were all-in on this pot before moving on
			tmp := make([]*participantInPot, 0, len(pipWinnerGroup))
			for i, winner := range pipWinnerGroup {
				winnings := share
				if i < remainder {
					winnings++
				}

				winner.AdjustBalance(winnings)
				payouts[winner.ID()] += winnings

				if _, ok := pot.allInParticipants[winner]; ok {
					continue
				}

				tmp = append(tmp, winner)
			}
			pipWinnerGroup = tmp
			pot.amount = 0

			if potIndex+1 == len(pots) {
				break MainLoop
			} else if len(pipWinnerGroup) == 0 {
				break
			}
		}
	}

	return payouts, nil
}

// completeTurn must be called after a participant bets, raises, checks, calls, or folds
func (p *PotManager) completeTurn() {
	p.actionAtIndex++
	p.skipNonActors()
}

func (p *PotManager) skipNonActors() {
	// stay in the loop until we find a player who can act
	for ; p.actionAtIndex < len(p.tableOrder); p.actionAtIndex++ {
		pip := p.tableOrder[p.normalizedActionAtIndex()]
		if pip.canAct() {
			return
		}
	}

	// if we reached this point, all players have acted
	p.needsPotCalculation = true
}

func (p *PotManager) calculatePot() {
	if !p.needsPotCalculation {
		return
	}

	p.needsPotCalculation = false

	if p.actionAmount == 0 && p.amountInPlay == 0 {
		return
	}

	allInAmounts := make(map[int]participantInPotMap)
	totalAction := 0
	highestAction := 0
	for _, pip := range p.tableOrder {
		totalAction += pip.amountInPlay
		if pip.amountInPlay > highestAction {
			highestAction = pip.amountInPlay
		}

		// participant went all-in this round
		if !pip.isFolded && pip.isAllIn && pip.amountInPlay > 0 {
			pips, ok := allInAmounts[pip.amountInPlay]
			if !ok {
				pips = make(participantInPotMap)
				allInAmounts[pip.amountInPlay] = pips
			}

			pips[pip] = true
		}
	}

	currentPot := p.pots[len(p.pots)-1]
	// if it's not nil, then someone is all-in on this pot. create a side pot
	if currentPot.allInParticipants != nil {
		currentPot = &pot{}
		p.pots = append(p.pots, currentPot)
	}

	// no all-in
	if len(allInAmounts) == 0 {
		currentPot.amount += totalAction
		p.amountInPlay = 0
		return
	}

	// add the highest amount in play as the final layer, even if it isn't an
	// all-in, so uncalled excess lands in its own pot and flows back
	if _, ok := allInAmounts[highestAction]; !ok {
		allInAmounts[highestAction] = nil
	}

	amounts := make([]int, 0, len(allInAmounts))
	for amount := range allInAmounts {
		amounts = append(amounts, amount)
	}
	sort.Ints(amounts)

	prevAmount := 0
	for i, allInAmount := range amounts {
		potAmount := 0
		for _, pip := range p.tableOrder {
			amount := pip.amountInPlay
			if amount > allInAmount {
				amount = allInAmount
			}

			diffAmount := amount - prevAmount
			if diffAmount < 0 {
				diffAmount = 0
			}

			potAmount += diffAmount
		}

		currentPot.amount += potAmount
		currentPot.allInParticipants = allInAmounts[allInAmount]

		if i+1 != len(amounts) {
			currentPot = &pot{}
			p.pots = append(p.pots, currentPot)
		}

		prevAmount = allInAmount
	}

	p.amountInPlay = 0
}

// NextRound advances to the next betting round
func (p *PotManager) NextRound() error {
	if !p.IsRoundOver() {
		return errors.New("betting round is not over")
	}

	p.calculatePot()
	p.reset()
	return nil
}

func (p *PotManager) reset() {
	for _, pip := range p.tableOrder {
		pip.reset()
	}

	p.actionAmount = 0
	p.lastRaise = p.bigBlind
	p.amountInPlay = 0
	p.actionAtIndex = 0

	// reset actionStartIndex to the first participant who can act
	for p.actionStartIndex = 0; p.actionStartIndex < len(p.tableOrder) && !p.tableOrder[p.actionStartIndex].canAct(); p.actionStartIndex++ {
		// no-op
	}

	// if everyone is all-in the new round is instantly over
	p.skipNonActors()
}

func (p *PotManager) normalizedActionAtIndex() int {
	return (p.actionStartIndex + p.actionAtIndex) % len(p.tableOrder)
}

// getActiveParticipantInPot returns the participantInPot if the participant is on the clock, otherwise
// an error if the participant cannot act
func (p *PotManager) getActiveParticipantInPot(pt Participant) (*participantInPot, error) {
	if p.isHandOver {
		return nil, ErrHandOver
	}

	pit := p.GetInTurnParticipant()
	if pit == nil {
		return nil, ErrRoundOver
	}

	if pit.ID() != pt.ID() {
		return nil, ErrNotYourTurn
	}

	pip, ok := p.participants[pt.ID()]
	if !ok {
		panic("participant not found")
	}

	return pip, nil
}

// EndHand will prevent further action from happening
func (p *PotManager) EndHand() {
	p.isHandOver = true
}
