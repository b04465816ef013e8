package ui

import (
	"strconv"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits, up to MaxDigits of
// them when MaxDigits is positive.
type NumericalEntry struct {
	widget.Entry
	MaxDigits int
}

func NewNumericalEntry(maxDigits int) *NumericalEntry {
	entry := &NumericalEntry{MaxDigits: maxDigits}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but a digit. Pasted text bypasses it and is left
// to the Validator.
func (e *NumericalEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	if e.MaxDigits > 0 && len([]rune(e.Text)) >= e.MaxDigits {
		return
	}
	e.Entry.TypedRune(r)
}

// Keyboard shows a numeric keypad on mobile.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// IntValue parses the current text.
func (e *NumericalEntry) IntValue() (int, bool) {
	v, err := strconv.Atoi(e.Text)
	return v, err == nil
}
