package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FinanceRecord - финансовая операция; доход положительный, расход отрицательный
type FinanceRecord struct {
	ID          int     `json:"id" yaml:"id"`
	Amount      float64 `json:"amount" yaml:"amount"`
	Category    string  `json:"category" yaml:"category"`
	Date        string  `json:"date" yaml:"date"`
	Description string  `json:"description" yaml:"description"`
}

var (
	financeFields        = []string{FieldID, "amount", "category", "date", "description"}
	financeMutableFields = []string{"amount", "category", "date", "description"}
)

func NewFinanceRecord(amount float64, category, date, description string) FinanceRecord {
	return FinanceRecord{
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: description,
	}
}

func (f *FinanceRecord) Kind() Kind              { return KindFinance }
func (f *FinanceRecord) GetID() int              { return f.ID }
func (f *FinanceRecord) SetID(id int)            { f.ID = id }
func (f *FinanceRecord) Fields() []string        { return financeFields }
func (f *FinanceRecord) MutableFields() []string { return financeMutableFields }

func (f *FinanceRecord) Field(name string) (string, error) {
	switch name {
	case FieldID:
		return formatID(f.ID), nil
	case "amount":
		return FormatAmount(f.Amount), nil
	case "category":
		return f.Category, nil
	case "date":
		return f.Date, nil
	case "description":
		return f.Description, nil
	}
	return "", unknownField(KindFinance, name)
}

func (f *FinanceRecord) SetField(name, value string) error {
	switch name {
	case FieldID:
		id, err := parseID(KindFinance, value)
		if err != nil {
			return err
		}
		f.ID = id
	case "amount":
		amount, err := ParseAmount(value)
		if err != nil {
			return invalidValue(KindFinance, name, value, err)
		}
		f.Amount = amount
	case "category":
		f.Category = value
	case "date":
		f.Date = value
	case "description":
		f.Description = value
	default:
		return unknownField(KindFinance, name)
	}
	return nil
}

// ParseAmount parses a decimal amount, accepting a comma as the decimal separator.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: сумма должна быть конечным числом", ErrInvalidValue)
	}
	return v, nil
}

// FormatAmount formats an amount with the shortest exact representation.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Balance sums the amounts of all records.
func Balance(records []FinanceRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.Amount
	}
	return total
}
