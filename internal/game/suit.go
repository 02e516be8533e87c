package game

import "fmt"

// Suit is one of the four card suits. The zero value is Clubs.
type Suit int

// Suits are declared in alphabetic order, which is also their ordinal order.
const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

type suitInfo struct {
	name      string
	symbol    string
	isRed     bool
	handOrder int
}

var suits = [...]suitInfo{
	Clubs:    {name: "clubs", symbol: "♣", isRed: false, handOrder: 2},
	Diamonds: {name: "diamonds", symbol: "♦", isRed: true, handOrder: 1},
	Hearts:   {name: "hearts", symbol: "♥", isRed: true, handOrder: 3},
	Spades:   {name: "spades", symbol: "♠", isRed: false, handOrder: 4},
}

// Suits returns every suit in alphabetic order
func Suits() []Suit {
	return []Suit{Clubs, Diamonds, Hearts, Spades}
}

// SuitFromName looks a suit up by the name it serialises to
func SuitFromName(name string) (Suit, error) {
	for i, info := range suits {
		if info.name == name {
			return Suit(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSuit, name)
}

func (s Suit) valid() bool {
	return s >= Clubs && s <= Spades
}

// Name returns the lower-case name used when serialising
func (s Suit) Name() string {
	if !s.valid() {
		return "?"
	}
	return suits[s].name
}

// Symbol returns the Unicode character for the suit
func (s Suit) Symbol() string {
	if !s.valid() {
		return "?"
	}
	return suits[s].symbol
}

// IsRed returns true for Diamonds and Hearts
func (s Suit) IsRed() bool {
	return s.valid() && suits[s].isRed
}

func (s Suit) String() string {
	return s.Name()
}

// CompareSuits orders suits alphabetically: clubs, diamonds, hearts, spades.
func CompareSuits(a, b Suit) int {
	return int(a) - int(b)
}

// CompareSuitsHandOrder orders suits by alternating colour, the order
// normally used to lay out a hand: diamonds, clubs, hearts, spades.
func CompareSuitsHandOrder(a, b Suit) int {
	return suits[a].handOrder - suits[b].handOrder
}

// MarshalText implements encoding.TextMarshaler
func (s Suit) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSuit, int(s))
	}
	return []byte(s.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Suit) UnmarshalText(text []byte) error {
	suit, err := SuitFromName(string(text))
	if err != nil {
		return err
	}
	*s = suit
	return nil
}
