package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/benbeisheim/starchess-backend/internal/chess"
)

func main() {
	placement := flag.String("placement", chess.StandardPlacement, "piece placement, rank 8 first")
	sideName := flag.String("side", "white", "side to move")
	depth := flag.Int("depth", 0, "perft depth (required)")
	divide := flag.Bool("divide", false, "print per-move node counts at the root")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}
	side, err := chess.ParseSide(*sideName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	board, err := chess.ParsePlacement(*placement, side)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if *divide {
		div := chess.PerftDivide(board, *depth)
		moves := make([]string, 0, len(div))
		var sum uint64
		for m, n := range div {
			moves = append(moves, m)
			sum += n
		}
		sort.Strings(moves)
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	start := time.Now()
	nodes := chess.Perft(board, *depth)
	elapsed := time.Since(start)
	fmt.Printf("depth %d \tnodes %d \t%s \t%.0f nps\n", *depth, nodes, elapsed, float64(nodes)/elapsed.Seconds())
}
