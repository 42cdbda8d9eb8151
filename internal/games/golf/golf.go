// Package golf implements the Golf patience (solitaire), a single player game used to exercise the
// searchers on games with hidden state.
//
// The deck is dealt in 7 columns of 5 cards, with only the top card of each column face-up, one card on
// the waste pile and the remaining 16 cards on the stock. The top card of any column can be moved to the
// waste if its rank is one above or below the rank of the top of the waste (no wrapping around King and Ace).
// Alternatively a card can be drawn from the stock to the waste. The game is won when the tableau is cleared,
// and lost when there are no more moves.
package golf

import (
	"fmt"
	"slices"
	"strings"

	"github.com/janpfeifer/gamesearch/internal/generics"
	"github.com/janpfeifer/gamesearch/internal/state"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

const (
	Columns     = 7
	ColumnDepth = 5
	DeckSize    = 52

	// TableauSize is the number of cards dealt to the columns.
	TableauSize = Columns * ColumnDepth
)

// Card is represented by a number from 0 to 51.
type Card uint8

// NewCard returns the card of the given rank (1 for Ace to 13 for King) and suit (0 to 3).
func NewCard(rank, suit int) Card {
	return Card((rank-1)*4 + suit)
}

// Rank of the card, from 1 (Ace) to 13 (King).
func (c Card) Rank() int { return int(c)/4 + 1 }

// Suit of the card, from 0 to 3.
func (c Card) Suit() int { return int(c) % 4 }

var (
	rankNames = []string{"?", "A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K"}
	suitNames = []string{"♠", "♥", "♦", "♣"}
)

// String implements fmt.Stringer.
func (c Card) String() string {
	if c >= DeckSize {
		return fmt.Sprintf("Card(%d)", uint8(c))
	}
	return rankNames[c.Rank()] + suitNames[c.Suit()]
}

// Adjacent returns whether the cards ranks differ by exactly one.
func (c Card) Adjacent(other Card) bool {
	diff := c.Rank() - other.Rank()
	return diff == 1 || diff == -1
}

// Move is either a column number, to play the top card of the column, or Draw.
type Move int8

// Draw a card from the stock to the waste.
const Draw Move = -1

// String implements fmt.Stringer.
func (m Move) String() string {
	if m == Draw {
		return "draw"
	}
	return fmt.Sprintf("play-%d", int(m)+1)
}

// Game is the state of a Golf patience. It implements state.Clonable[*Game, Move], as a single player game.
type Game struct {
	columns [Columns][]Card
	// hidden is the number of face-down cards at the bottom of each column.
	hidden [Columns]int8
	waste  []Card
	stock  []Card

	// flips records for each played column card whether it turned a face-down card up, so it can be undone.
	flips []bool

	// hash is updated incrementally, see zobrist keys.
	hash uint64
}

// Zobrist keys for each card in each column, in the stock and on the top of the waste.
//
// The order of the cards in the columns and in the stock never changes during a game, and the number of
// face-down cards follows from the size of the column, so only where each card is needs hashing.
var (
	zobristColumns [Columns][DeckSize]uint64
	zobristStock   [DeckSize]uint64
	zobristWaste   [DeckSize]uint64
)

func init() {
	rng := rand.New(rand.NewSource(0x901f))
	for col := range Columns {
		for card := range DeckSize {
			zobristColumns[col][card] = rng.Uint64()
		}
	}
	for card := range DeckSize {
		zobristStock[card] = rng.Uint64()
		zobristWaste[card] = rng.Uint64()
	}
}

var (
	_ state.Clonable[*Game, Move]  = (*Game)(nil)
	_ state.Prioritizer[Move]      = (*Game)(nil)
	_ state.TerminatingMover[Move] = (*Game)(nil)
)

// NewDeal shuffles a deck with the given seed and deals it. The same seed always yields the same deal.
func NewDeal(seed uint64) *Game {
	deck := make([]Card, DeckSize)
	for ii := range deck {
		deck[ii] = Card(ii)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	columns := make([][]Card, Columns)
	for col := range columns {
		columns[col] = deck[col*ColumnDepth : (col+1)*ColumnDepth]
	}
	g, err := FromLayout(columns, ColumnDepth-1, deck[TableauSize], deck[TableauSize+1:])
	if err != nil {
		panic(errors.WithMessage(err, "dealing a full deck"))
	}
	return g
}

// FromLayout creates a game from the given columns (bottom card first), where each column has `hidden` cards
// face-down (or fewer, the top card is always face-up). The stock is given bottom card first, so the last
// card is drawn first.
//
// It is used to build specific positions in tests. Cards must not be repeated.
func FromLayout(columns [][]Card, hidden int, waste Card, stock []Card) (*Game, error) {
	if len(columns) != Columns {
		return nil, errors.Errorf("golf requires %d columns, got %d", Columns, len(columns))
	}
	g := &Game{waste: []Card{waste}, stock: slices.Clone(stock)}
	seen := generics.MakeSet[Card](DeckSize)
	all := append(slices.Concat(columns...), waste)
	all = append(all, stock...)
	for _, c := range all {
		if c >= DeckSize {
			return nil, errors.Errorf("invalid card %s", c)
		}
		if seen.Has(c) {
			return nil, errors.Errorf("card %s repeated", c)
		}
		seen.Insert(c)
	}
	for col, cards := range columns {
		g.columns[col] = slices.Clone(cards)
		g.hidden[col] = int8(max(0, min(hidden, len(cards)-1)))
	}
	g.hash = g.fullHash()
	return g, nil
}

// fullHash computes the hash of the position from scratch.
func (g *Game) fullHash() (hash uint64) {
	for col, cards := range g.columns {
		for _, c := range cards {
			hash ^= zobristColumns[col][c]
		}
	}
	for _, c := range g.stock {
		hash ^= zobristStock[c]
	}
	return hash ^ zobristWaste[g.WasteTop()]
}

// Clone implements state.Clonable.
func (g *Game) Clone() *Game {
	newG := &Game{
		hidden: g.hidden,
		hash:   g.hash,
		waste:  slices.Clone(g.waste),
		stock:  slices.Clone(g.stock),
		flips:  slices.Clone(g.flips),
	}
	for col := range g.columns {
		newG.columns[col] = slices.Clone(g.columns[col])
	}
	return newG
}

// CurrentPlayer implements state.TwoPlayer: it is always state.PlayerFirst.
func (g *Game) CurrentPlayer() state.PlayerNum { return state.PlayerFirst }

// IsGameDraw implements state.TwoPlayer: Golf is never drawn.
func (g *Game) IsGameDraw() bool { return false }

// WasteTop is the card on the top of the waste pile.
func (g *Game) WasteTop() Card { return g.waste[len(g.waste)-1] }

// StockSize is the number of cards left in the stock.
func (g *Game) StockSize() int { return len(g.stock) }

// Stock returns the cards in the stock, the last one is the next to be drawn. Callers must not modify it.
func (g *Game) Stock() []Card { return g.stock }

// ColumnTop returns the top card of a column, and false if it is empty.
func (g *Game) ColumnTop(col int) (Card, bool) {
	cards := g.columns[col]
	if len(cards) == 0 {
		return 0, false
	}
	return cards[len(cards)-1], true
}

// TableauCount is the number of cards left in the columns.
func (g *Game) TableauCount() (count int) {
	for _, cards := range g.columns {
		count += len(cards)
	}
	return
}

// Cleared is the number of cards cleared from the tableau: it's the usual score of a Golf game.
func (g *Game) Cleared() int {
	return TableauSize - g.TableauCount()
}

// IsGameWon implements state.State: the tableau is cleared.
func (g *Game) IsGameWon() bool {
	return g.TableauCount() == 0
}

// IsGameLost implements state.State: there are no more moves, with cards left in the tableau.
func (g *Game) IsGameLost() bool {
	return !g.IsGameWon() && len(g.stock) == 0 && !g.hasPlayableColumn()
}

func (g *Game) canPlay(col int) bool {
	top, ok := g.ColumnTop(col)
	return ok && top.Adjacent(g.WasteTop())
}

func (g *Game) hasPlayableColumn() bool {
	for col := range Columns {
		if g.canPlay(col) {
			return true
		}
	}
	return false
}

// LegalMoves implements state.State.
func (g *Game) LegalMoves() []Move {
	if g.IsGameWon() {
		return nil
	}
	var moves []Move
	for col := range Columns {
		if g.canPlay(col) {
			moves = append(moves, Move(col))
		}
	}
	if len(g.stock) > 0 {
		moves = append(moves, Draw)
	}
	return moves
}

// MovePriority implements state.Prioritizer: clearing a card from the tableau comes before drawing. Among
// column plays, the ones from the columns with more face-down cards are preferred, since they reveal cards.
func (g *Game) MovePriority(move Move) int {
	if move == Draw {
		return 0
	}
	return 10 + int(g.hidden[move])
}

// IsTerminatingMove implements state.TerminatingMover: playing the last card of the tableau wins the game.
func (g *Game) IsTerminatingMove(move Move) bool {
	return move != Draw && g.TableauCount() == 1 && len(g.columns[move]) == 1
}

// ExecuteMove implements state.State.
func (g *Game) ExecuteMove(move Move) error {
	if g.IsGameWon() {
		return errors.Wrapf(state.ErrInvalidMove, "can't %s: game is already won", move)
	}
	if move == Draw {
		if len(g.stock) == 0 {
			return errors.Wrap(state.ErrInvalidMove, "can't draw: stock is empty")
		}
		last := len(g.stock) - 1
		card := g.stock[last]
		g.hash ^= zobristStock[card] ^ zobristWaste[g.WasteTop()] ^ zobristWaste[card]
		g.waste = append(g.waste, card)
		g.stock = g.stock[:last]
		return nil
	}
	if move < 0 || move >= Columns {
		return errors.Wrapf(state.ErrInvalidMove, "column %d out of range", move)
	}
	col := int(move)
	if !g.canPlay(col) {
		return errors.Wrapf(state.ErrInvalidMove, "can't %s on %s", move, g.WasteTop())
	}
	cards := g.columns[col]
	card := cards[len(cards)-1]
	g.hash ^= zobristColumns[col][card] ^ zobristWaste[g.WasteTop()] ^ zobristWaste[card]
	g.waste = append(g.waste, card)
	cards = cards[:len(cards)-1]
	g.columns[col] = cards
	flipped := len(cards) > 0 && int(g.hidden[col]) >= len(cards)
	if flipped {
		g.hidden[col]--
	}
	g.flips = append(g.flips, flipped)
	return nil
}

// UndoMove implements state.State.
func (g *Game) UndoMove(move Move) error {
	if len(g.waste) < 2 {
		return errors.Wrapf(state.ErrInvalidMove, "can't undo %s: nothing played yet", move)
	}
	last := len(g.waste) - 1
	card := g.waste[last]
	wasteKeys := zobristWaste[card] ^ zobristWaste[g.waste[last-1]]
	if move == Draw {
		g.hash ^= zobristStock[card] ^ wasteKeys
		g.stock = append(g.stock, card)
		g.waste = g.waste[:last]
		return nil
	}
	if move < 0 || move >= Columns {
		return errors.Wrapf(state.ErrInvalidMove, "column %d out of range", move)
	}
	if len(g.flips) == 0 {
		return errors.Wrapf(state.ErrInvalidMove, "can't undo %s: no cards were played from the columns", move)
	}
	col := int(move)
	lastFlip := len(g.flips) - 1
	if g.flips[lastFlip] {
		g.hidden[col]++
	}
	g.flips = g.flips[:lastFlip]
	g.hash ^= zobristColumns[col][card] ^ wasteKeys
	g.columns[col] = append(g.columns[col], card)
	g.waste = g.waste[:last]
	return nil
}

// Hash implements state.State. Only the top of the waste matters for the rules, the cards below it
// are not included.
func (g *Game) Hash() uint64 {
	return g.hash
}

// String implements fmt.Stringer. Face-down cards are shown as "##".
func (g *Game) String() string {
	var sb strings.Builder
	for col, cards := range g.columns {
		fmt.Fprintf(&sb, "%d:", col+1)
		for ii, c := range cards {
			if ii < int(g.hidden[col]) {
				sb.WriteString(" ##")
			} else {
				sb.WriteString(" " + c.String())
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "waste: %s (%d cards), stock: %d cards\n", g.WasteTop(), len(g.waste), len(g.stock))
	return sb.String()
}
