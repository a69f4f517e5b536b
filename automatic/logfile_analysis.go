package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/domino14/solitaire/stats"
)

// AnalyzeLogFile reads a game log written by Run and summarizes it per
// player.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return analyzeLog(file)
}

type playerTally struct {
	played int
	won    int
	nodes  stats.Statistic
}

func analyzeLog(rd io.Reader) (string, error) {
	r := csv.NewReader(rd)
	// Record looks like:
	// seed,dealID,player,outcome,status,moves,score,popped,elapsedMs
	r.FieldsPerRecord = 9

	tallies := map[string]*playerTally{}
	var order []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "seed" {
			// this is the header line
			continue
		}
		popped, err := strconv.Atoi(record[7])
		if err != nil {
			return "", fmt.Errorf("bad popped count %q: %w", record[7], err)
		}
		t, ok := tallies[record[2]]
		if !ok {
			t = &playerTally{}
			tallies[record[2]] = t
			order = append(order, record[2])
		}
		t.played++
		if record[3] == "won" {
			t.won++
		}
		t.nodes.Push(float64(popped))
	}

	out := ""
	for _, p := range order {
		t := tallies[p]
		rate, margin := stats.WinRate(t.won, t.played, confidence)
		out += fmt.Sprintf("%s: played %d, won %d (%.2f%% ± %.2f%%), mean nodes %.1f\n",
			p, t.played, t.won, 100*rate, 100*margin, t.nodes.Mean())
	}
	return out, nil
}
