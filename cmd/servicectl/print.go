package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/service/backup"
	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

const dateLayout = "02.01.2006"

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(out)
	if len(header) > 0 {
		t.SetHeader(header)
	}
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func printRepairs(out io.Writer, list []storage.Repair) {
	t := newTable(out, "ID", "Receipt", "Device", "Client", "Status", "Total", "Paid")
	for _, r := range list {
		t.Append([]string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.ReceiptID, 10),
			r.DeviceName,
			r.ClientName,
			r.Status,
			money(r.TotalCost),
			strconv.FormatBool(r.IsPaid),
		})
	}
	t.Render()
}

func printRepair(out io.Writer, r *storage.Repair) {
	t := newTable(out)
	t.SetColumnSeparator("")
	t.AppendBulk([][]string{
		{"id", strconv.FormatInt(r.ID, 10)},
		{"receipt", strconv.FormatInt(r.ReceiptID, 10)},
		{"device", r.DeviceName},
		{"fault", r.FaultDesc},
		{"client", r.ClientName + " " + r.ClientPhone},
		{"status", r.Status},
		{"executor", r.Executor},
		{"labor", money(r.CostLabor)},
		{"total", money(r.TotalCost)},
		{"paid", strconv.FormatBool(r.IsPaid) + " " + r.PaymentType},
		{"accepted", r.DateStart.Format(dateLayout)},
	})
	if r.DateEnd != nil {
		t.Append([]string{"issued", r.DateEnd.Format(dateLayout)})
	}
	t.Render()
}

func printParts(out io.Writer, list []storage.Part) {
	t := newTable(out, "ID", "Name", "Supplier", "Price", "Cost", "In stock", "Repair")
	for _, p := range list {
		repair := ""
		if p.RepairID != nil {
			repair = strconv.FormatInt(*p.RepairID, 10)
		}
		t.Append([]string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.Supplier,
			money(p.PriceUah),
			money(p.CostUah),
			strconv.FormatBool(p.InStock),
			repair,
		})
	}
	t.Render()
}

func printBackups(out io.Writer, list []backup.Info) {
	t := newTable(out, "Name", "Size", "Created")
	for _, b := range list {
		t.Append([]string{b.Name, strconv.FormatInt(b.Size, 10), b.CreatedAt.Format("02.01.2006 15:04")})
	}
	t.Render()
}

func printBalances(out io.Writer, b storage.Balances) {
	fmt.Fprintf(out, "cash %.2f  card %.2f  total %.2f\n", b.Cash, b.Card, b.Total)
}
