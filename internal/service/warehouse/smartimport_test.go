package warehouse

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvoice_DFI(t *testing.T) {
	text := "Код;Наименование;Кол-во;Цена;Закупка\n" +
		"A-100;Дисплей iPhone 11;2;2 450,50;1800\n" +
		"\n" +
		"B-7;Акумулятор;1;899.99\r\n"

	items, errs, err := ParseInvoice("dfi", text)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, items, 2)

	assert.Equal(t, ImportItem{Line: 2, ProductCode: "A-100", Name: "Дисплей iPhone 11", Quantity: 2, PriceUah: 2450.5, CostUah: 1800}, items[0])
	assert.Equal(t, 4, items[1].Line)
	assert.Equal(t, 899.99, items[1].PriceUah)
	assert.Zero(t, items[1].CostUah)
}

func TestParseInvoice_ARC(t *testing.T) {
	text := "Шлейф зарядки\tFC-12\t3\t150,00\n"

	items, errs, err := ParseInvoice("ARC", text)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, items, 1)
	assert.Equal(t, "Шлейф зарядки", items[0].Name)
	assert.Equal(t, "FC-12", items[0].ProductCode)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 150.0, items[0].PriceUah)
}

func TestParseInvoice_ReportsMalformedLines(t *testing.T) {
	text := "A;Скло;1;100\n" +
		"B;Скло;нуль;100\n" +
		"C;;1;100\n" +
		"D;Кришка\n" +
		"просто текст\n"

	items, errs, err := ParseInvoice("dfi", text)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, errs, 4)

	assert.Equal(t, 2, errs[0].Line)
	assert.Equal(t, 3, errs[1].Line)
	assert.Equal(t, 4, errs[2].Line)
	assert.Equal(t, 5, errs[3].Line)
	assert.Equal(t, "B;Скло;нуль;100", errs[0].Text)
}

func TestParseInvoice_UnknownFormat(t *testing.T) {
	_, _, err := ParseInvoice("xml", "a;b;1;2")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseInvoice_LongLines(t *testing.T) {
	long := "A;" + strings.Repeat("Скло ", 20000) + ";1;100"

	items, errs, err := ParseInvoice(FormatDFI, long)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, items, 1)

	_, _, err = ParseInvoice(FormatDFI, "A;"+strings.Repeat("x", maxLineSize+1)+";1;100")
	assert.ErrorIs(t, err, ErrInvalidImport)
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}
