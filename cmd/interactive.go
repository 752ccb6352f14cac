package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"golang.org/x/term"

	"ctsales/internal/export"
	"ctsales/internal/store"
	"ctsales/internal/view"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// runInteractive drives the filter state from the keyboard: arrow keys cycle
// the year and town restrictions, letters cycle residential type, adjust the
// amount range, reset, and export the current subset.
func runInteractive(ds *store.Dataset, exporter *export.Writer) {
	if runtime.GOOS == "windows" {
		enableVT()
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Println("(interactive mode not supported on this terminal)")
		return
	}
	defer term.Restore(fd, oldState)

	binder := view.NewBinder(ds)
	reader := bufio.NewReader(os.Stdin)

	// Cycling positions: -1 means no restriction.
	townIdx := -1
	resiIdx := -1
	page := 0

	redraw := func() {
		// Clear screen (ANSI reset to top + clear screen)
		fmt.Print("\033[H\033[2J")

		state := binder.State()
		bounds := binder.Bounds()
		rows := binder.Table()

		year := "any"
		if state.Year != nil {
			year = fmt.Sprintf("%d", *state.Year)
		}
		town := "all"
		if len(state.Towns) > 0 {
			town = strings.Join(state.Towns, ", ")
		}
		resi := "all"
		if len(state.ResidentialTypes) > 0 {
			resi = strings.Join(state.ResidentialTypes, ", ")
		}

		fmt.Printf("Year: %s%s%s   Town: %s%s%s   Type: %s%s%s\r\n",
			colorGreen, year, colorReset,
			colorGreen, town, colorReset,
			colorGreen, resi, colorReset)
		fmt.Printf("Amount: $%.0f – $%.0f (bounds $%.0f – $%.0f)\r\n",
			state.AmountLow, state.AmountHigh, bounds.Min, bounds.Max)
		fmt.Printf("%sMatching sales: %d%s\r\n\r\n", colorRed, len(rows), colorReset)

		start := page * 10
		if start > len(rows) {
			start = len(rows)
			page = start / 10
		}
		end := start + 10
		if end > len(rows) {
			end = len(rows)
		}
		for _, rec := range rows[start:end] {
			resiLabel := rec.ResidentialType
			if resiLabel == "" {
				resiLabel = "Unknown"
			}
			fmt.Printf("%-20s | %-14s | %9.0f | %d | %s\r\n",
				rec.Town, resiLabel, rec.SaleAmount, rec.ListYear, rec.Address)
		}
		if len(rows) > 10 {
			fmt.Printf("\r\n(page %d/%d — Enter for next page)\r\n", page+1, (len(rows)+9)/10)
		}
		fmt.Print("\r\n(←/→ year, ↑/↓ town, t type, y any year, 0 reset, e/x/p export csv/xlsx/shp, Esc quit)\r\n")
	}

	cycleYear := func(delta int) {
		years := ds.Years()
		if len(years) == 0 {
			return
		}
		cur := 0
		if state := binder.State(); state.Year != nil {
			for i, y := range years {
				if y == *state.Year {
					cur = i
					break
				}
			}
		}
		cur = (cur + delta + len(years)) % len(years)
		binder.SetYear(years[cur])
		page = 0
	}

	cycleTown := func(delta int) {
		towns := ds.Towns()
		if len(towns) == 0 {
			return
		}
		townIdx += delta
		if townIdx < -1 {
			townIdx = len(towns) - 1
		}
		if townIdx >= len(towns) {
			townIdx = -1
		}
		if townIdx == -1 {
			binder.SetTowns(nil)
		} else {
			binder.SetTowns([]string{towns[townIdx]})
		}
		page = 0
	}

	cycleResi := func() {
		resis := ds.ResidentialTypes()
		if len(resis) == 0 {
			return
		}
		resiIdx++
		if resiIdx >= len(resis) {
			resiIdx = -1
		}
		if resiIdx == -1 {
			binder.SetResidentialTypes(nil)
		} else {
			binder.SetResidentialTypes([]string{resis[resiIdx]})
		}
		page = 0
	}

	doExport := func(format string) {
		rows := binder.Table()
		stamp := time.Now().Format("20060102-150405")
		var path string
		var err error
		switch format {
		case "csv":
			path, err = exporter.WriteCSV("sales-"+stamp+".csv", rows, export.CSVOptions{BOMPrefix: true})
		case "xlsx":
			path, err = exporter.WriteExcel("sales-"+stamp+".xlsx", rows)
		case "shp":
			path, err = exporter.WriteShapefile("sales-"+stamp+".shp", rows)
		}
		if err != nil {
			fmt.Printf("\r\nExport failed: %v\r\n", err)
			return
		}
		fmt.Printf("\r\nWrote %d rows to %s\r\n", len(rows), path)
		time.Sleep(time.Second)
	}

	redraw()

	for {
		b1, err := reader.ReadByte()
		if err != nil {
			return
		}
		// Handle Windows console arrow sequences (0 or 224, then code)
		if b1 == 0 || b1 == 224 {
			b2, _ := reader.ReadByte()
			switch b2 {
			case 72: // up
				cycleTown(-1)
				redraw()
			case 80: // down
				cycleTown(1)
				redraw()
			case 75: // left
				cycleYear(-1)
				redraw()
			case 77: // right
				cycleYear(1)
				redraw()
			}
			continue
		}

		switch b1 {
		case 27: // ESC or ANSI sequence
			if reader.Buffered() == 0 {
				// Bare ESC – exit
				fmt.Println()
				return
			}
			b2, _ := reader.ReadByte()
			if b2 != '[' {
				// Not a CSI sequence; ignore unknown combo
				continue
			}
			if reader.Buffered() == 0 {
				continue
			}
			b3, _ := reader.ReadByte()
			switch b3 {
			case 'A': // up
				cycleTown(-1)
				redraw()
			case 'B': // down
				cycleTown(1)
				redraw()
			case 'D': // left
				cycleYear(-1)
				redraw()
			case 'C': // right
				cycleYear(1)
				redraw()
			}
		case '\r', '\n': // Enter – next table page
			page++
			redraw()
		case 't':
			cycleResi()
			redraw()
		case 'y':
			binder.ClearYear()
			page = 0
			redraw()
		case '0':
			binder.Reset()
			townIdx, resiIdx, page = -1, -1, 0
			redraw()
		case 'e':
			doExport("csv")
			redraw()
		case 'x':
			doExport("xlsx")
			redraw()
		case 'p':
			doExport("shp")
			redraw()
		case 3: // Ctrl-C
			fmt.Println()
			return

		default:
			// ignore other keys
		}
	}
}
