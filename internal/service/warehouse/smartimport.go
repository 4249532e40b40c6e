package warehouse

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/money"
)

// Форматы накладных поставщиков
const (
	FormatDFI = "dfi" // code;name;qty;price[;cost]
	FormatARC = "arc" // name<TAB>code<TAB>qty<TAB>price
)

var (
	ErrUnknownFormat = errors.New("unknown invoice format")
	ErrInvalidImport = errors.New("invalid invoice text")
)

// maxLineSize ограничивает одну строку накладной
const maxLineSize = 1 << 20

type ImportItem struct {
	Line        int     `json:"line"`
	ProductCode string  `json:"productCode"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	PriceUah    float64 `json:"priceUah"`
	CostUah     float64 `json:"costUah"`
}

type ImportError struct {
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// ParseInvoice reads supplier invoice text. Blank lines and a leading header
// line are skipped; a malformed line is reported and the rest is still parsed.
func ParseInvoice(format, text string) ([]ImportItem, []ImportError, error) {
	var sep string
	switch strings.ToLower(format) {
	case FormatDFI:
		sep = ";"
	case FormatARC:
		sep = "\t"
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	var (
		items   []ImportItem
		errs    []ImportError
		lineNum int
	)

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, sep)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		first := len(items) == 0 && len(errs) == 0

		var (
			item ImportItem
			err  error
		)
		if sep == ";" {
			item, err = parseDFI(fields)
		} else {
			item, err = parseARC(fields)
		}

		if err != nil {
			if first && isHeader(fields) {
				continue
			}
			errs = append(errs, ImportError{Line: lineNum, Text: line, Message: err.Error()})
			continue
		}

		item.Line = lineNum
		items = append(items, item)
	}

	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: строка %d: %w", ErrInvalidImport, lineNum+1, err)
	}

	return items, errs, nil
}

func parseDFI(f []string) (ImportItem, error) {
	if len(f) < 4 {
		return ImportItem{}, fmt.Errorf("ожидается минимум 4 поля, получено %d", len(f))
	}

	item := ImportItem{ProductCode: f[0], Name: f[1]}
	if err := fillNumbers(&item, f[2], f[3]); err != nil {
		return ImportItem{}, err
	}

	if len(f) > 4 && f[4] != "" {
		cost, err := parseDecimal(f[4])
		if err != nil {
			return ImportItem{}, fmt.Errorf("закупочная цена: %w", err)
		}
		item.CostUah = cost
	}

	return item, nil
}

func parseARC(f []string) (ImportItem, error) {
	if len(f) < 4 {
		return ImportItem{}, fmt.Errorf("ожидается 4 поля, получено %d", len(f))
	}

	item := ImportItem{Name: f[0], ProductCode: f[1]}
	if err := fillNumbers(&item, f[2], f[3]); err != nil {
		return ImportItem{}, err
	}

	return item, nil
}

func fillNumbers(item *ImportItem, qty, price string) error {
	if item.Name == "" {
		return errors.New("пустое наименование")
	}

	n, err := strconv.Atoi(qty)
	if err != nil || n <= 0 {
		return fmt.Errorf("неверное количество %q", qty)
	}
	item.Quantity = n

	p, err := parseDecimal(price)
	if err != nil {
		return fmt.Errorf("цена: %w", err)
	}
	item.PriceUah = p

	return nil
}

// parseDecimal accepts "1 250,50" as well as "1250.50".
func parseDecimal(s string) (float64, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("неверное число %q", s)
	}
	return money.Round2(v), nil
}

// isHeader spots a column title row: no field parses as a number.
func isHeader(f []string) bool {
	for _, v := range f {
		if _, err := parseDecimal(v); err == nil {
			return false
		}
	}
	return true
}
