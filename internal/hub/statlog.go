// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// appendLog appends one CSV row to filename, creating it if needed.
func appendLog(filename string, fields []interface{}) (err error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)

	fieldStrings := make([]string, len(fields))
	for i, field := range fields {
		switch v := field.(type) {
		case float32, float64:
			fieldStrings[i] = fmt.Sprintf("%.2f", v)
		default:
			fieldStrings[i] = fmt.Sprint(v)
		}
	}

	if err = w.Write(fieldStrings); err != nil {
		return
	}
	w.Flush()
	return w.Error()
}

// appendStatlog records a population/tick sample. A blank statlogPath
// disables logging entirely (used by tests and by offline single-hub
// runs that don't care about historical samples).
func (h *Hub) appendStatlog() {
	if h.statlogPath == "" {
		return
	}
	if err := appendLog(h.statlogPath, []interface{}{
		time.Now().Unix(),
		h.tick,
		len(h.entities),
		h.PlayerCount(),
	}); err != nil {
		fmt.Println("statlog: append error:", err)
	}
}
