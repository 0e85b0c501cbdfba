package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/andrewpark3412/gift-tracking/internal/gateway"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRecord prints a record as sorted key: value lines, flagging records
// that only exist in the local queue.
func printRecord(rec remote.Record) error {
	if jsonFlag {
		return printJSON(rec)
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-22s %v\n", k+":", formatValue(rec[k]))
	}
	if id, _ := rec["id"].(string); gateway.IsTemporaryID(id) {
		fmt.Println("  (queued offline; will sync when the connection returns)")
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func printDone(what, id string) error {
	if jsonFlag {
		return printJSON(map[string]string{"result": what, "id": id})
	}
	fmt.Printf("%s %s\n", what, id)
	return nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func optMoney(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
