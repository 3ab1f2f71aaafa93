// README: Helpa (service provider) records as stored in the providers spreadsheet.
package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"yourhelpa/internal/types"
)

var (
	ErrNotFound   = errors.New("provider not found")
	ErrBadRequest = errors.New("bad request")
)

type Provider struct {
	ID          Text    `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	Price       Text    `json:"price"`
	Location    string  `json:"location"`
	Phone       Text    `json:"phone,omitempty"`
	Available   bool    `json:"available"`
	Specialties List    `json:"specialties"`
}

type RegisterCommand struct {
	Name        string
	Phone       string
	Email       string
	Category    string
	Location    string
	Price       string
	Specialties []string
	Bio         string
}

// Text accepts a JSON string or number; spreadsheet cells arrive as either.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return string(t)
}

// List accepts a JSON array or a comma separated string.
type List []string

func (l *List) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	var items []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	*l = items
	return nil
}

// DisplayPrice renders the price cell for chat cards.
func (p Provider) DisplayPrice() string {
	s := strings.TrimSpace(p.Price.String())
	if s == "" {
		return "Price on request"
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return "from " + types.Money{Amount: int64(math.Round(n * 100)), Currency: types.CurrencyNGN}.String()
	}
	return s
}
