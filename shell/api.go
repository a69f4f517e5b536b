package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/solitaire/automatic"
	"github.com/domino14/solitaire/config"
	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/heuristic"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/movegen"
	"github.com/domino14/solitaire/solver"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Uint64Default(key string, defaultU uint64) (uint64, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultU, nil
	}
	return strconv.ParseUint(v[0], 10, 64)
}

func (c CmdOptions) Duration(key string) (time.Duration, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return time.ParseDuration(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage()), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}

func (sc *ShellController) deal(cmd *shellcmd) (*Response, error) {
	drawCount, err := cmd.options.IntDefault("draw", sc.config.GetInt(config.ConfigDrawCount))
	if err != nil {
		return nil, err
	}
	seed := frand.Uint64n(1<<63 - 1)
	if len(cmd.args) > 0 {
		seed, err = strconv.ParseUint(cmd.args[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad seed %q: %w", cmd.args[0], err)
		}
	}
	g, err := game.Deal(seed, drawCount)
	if err != nil {
		return nil, err
	}
	sc.setGame(g)
	log.Debug().Uint64("seed", seed).Str("deal", g.DealID()).Msg("dealt")
	return msg(fmt.Sprintf("seed %d, deal %s\n\n%s", seed, g.DealID(), g.ToDisplayText())), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need a layout file to load")
	}
	bts, err := os.ReadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	g, err := game.FromText(string(bts))
	if err != nil {
		return nil, err
	}
	sc.setGame(g)
	return msg(g.ToDisplayText()), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) == 0 {
		return msg(sc.game.Encode()), nil
	}
	if err := os.WriteFile(cmd.args[0], []byte(sc.game.Encode()), 0o644); err != nil {
		return nil, err
	}
	return msg("exported to " + cmd.args[0]), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.game.ToDisplayText()), nil
}

func moveTableHeader() string {
	return "     Move        Description\n"
}

func moveTableRow(idx int, m move.Move) string {
	return fmt.Sprintf("%3d: %-12s%s", idx+1, m.String(), m.ShortDescription())
}

func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	gen := movegen.NewGenerator()
	sc.lastMoves = slices.Clone(gen.GenAll(sc.game.View()))
	if len(sc.lastMoves) == 0 {
		return msg("no legal moves"), nil
	}
	var sb strings.Builder
	sb.WriteString(moveTableHeader())
	for i, m := range sc.lastMoves {
		sb.WriteString(moveTableRow(i, m))
		sb.WriteByte('\n')
	}
	return msg(sb.String()), nil
}

// matchMove finds the legal move the user means. The count may be left
// out; the smallest legal count is then used.
func matchMove(g *game.Game, fields []string) (move.Move, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return move.Move{}, errors.New("a move is: <from> <to> [count], e.g. T3 FH 1")
	}
	from, err := move.LocationFromString(fields[0])
	if err != nil {
		return move.Move{}, err
	}
	to, err := move.LocationFromString(fields[1])
	if err != nil {
		return move.Move{}, err
	}
	count := 0
	if len(fields) == 3 {
		if count, err = strconv.Atoi(fields[2]); err != nil {
			return move.Move{}, fmt.Errorf("bad count %q: %w", fields[2], err)
		}
	}
	for _, m := range g.LegalMoves(nil) {
		if m.From() == from && m.To() == to && (count == 0 || m.Count() == count) {
			return m, nil
		}
	}
	return move.Move{}, fmt.Errorf("%w: %s", game.ErrIllegalMove, strings.Join(fields, " "))
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var m move.Move
	var err error
	if len(cmd.args) == 1 {
		idx, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, fmt.Errorf("play takes a move or its number from `moves`")
		}
		if idx < 1 || idx > len(sc.lastMoves) {
			return nil, fmt.Errorf("no move numbered %d; run `moves` first", idx)
		}
		m = sc.lastMoves[idx-1]
	} else if m, err = matchMove(sc.game, cmd.args); err != nil {
		return nil, err
	}
	if err := sc.playMove(m); err != nil {
		return nil, err
	}
	return msg(sc.afterMove(m)), nil
}

func (sc *ShellController) playMove(m move.Move) error {
	before := sc.game.Copy()
	if err := sc.game.PlayMove(m); err != nil {
		return err
	}
	sc.history = append(sc.history, before)
	sc.lastMoves = nil
	if sc.planNext < len(sc.plan) && sc.plan[sc.planNext].Equals(m) {
		sc.planNext++
	} else if sc.plan != nil {
		log.Debug().Msg("left-the-plan")
		sc.clearPlan()
	}
	return nil
}

func (sc *ShellController) afterMove(m move.Move) string {
	s := "played " + m.ShortDescription() + "\n\n" + sc.game.ToDisplayText()
	if sc.game.IsWon() {
		s += "\nThe game is won!"
	} else if sc.game.IsStuck() {
		s += "\nNo legal moves remain."
	}
	return s
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if len(sc.history) == 0 {
		return nil, errors.New("nothing to undo")
	}
	sc.game = sc.history[len(sc.history)-1]
	sc.history = sc.history[:len(sc.history)-1]
	sc.lastMoves = nil
	if sc.plan != nil {
		if len(sc.history) < sc.planBase {
			log.Debug().Msg("undid-past-the-plan")
			sc.clearPlan()
		} else {
			sc.planNext = len(sc.history) - sc.planBase
		}
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	cfg, err := sc.solverConfig(cmd.options)
	if err != nil {
		return nil, err
	}
	// The loaded game decides the draw count, not the setting.
	cfg.DrawCount = sc.game.DrawCount()
	var opts []solver.Option
	if path := cmd.options.String("log"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		opts = append(opts, solver.WithLogStream(f))
	}
	s, err := solver.NewSolver(cfg, opts...)
	if err != nil {
		return nil, err
	}
	var res *solver.Result
	if cfg.Threads > 1 {
		res, err = s.SolveParallel(context.Background(), sc.game, cfg.Threads)
	} else {
		res, err = s.Solve(context.Background(), sc.game)
	}
	if err != nil {
		return nil, err
	}
	sc.lastRes = res
	sc.setPlan(res.Moves)

	if st, err := sc.storeHandle(); err != nil {
		log.Err(err).Msg("store-unavailable")
	} else if st != nil {
		gr := &automatic.GameResult{Seed: sc.game.Seed(), DealID: sc.game.DealID(),
			Player: automatic.SearchPlayer, Result: res}
		if err := st.Save(context.Background(), gr.Record(sc.game.DrawCount())); err != nil {
			log.Err(err).Msg("store-save-failed")
		}
	}
	if path := cmd.options.String("yaml"); path != "" {
		out, err := res.YAML()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return nil, err
		}
	}
	return msg(resultSummary(res)), nil
}

func resultSummary(res *solver.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s): %d moves, %d nodes popped, %d expanded, %d duplicates, %v\n",
		res.Outcome, res.Status, len(res.Moves), res.Stats.Popped, res.Stats.Expanded,
		res.Stats.Duplicates, res.Stats.Elapsed.Round(time.Millisecond))
	if err := res.Err(); err != nil {
		fmt.Fprintf(&sb, "%v\n", err)
	}
	if len(res.Moves) > 0 {
		sb.WriteString("use `plan` to see the moves and `next` to step through them")
	}
	return sb.String()
}

func (sc *ShellController) showPlan(cmd *shellcmd) (*Response, error) {
	if sc.plan == nil {
		return nil, errors.New("no plan; run `solve` or `greedy` first")
	}
	var sb strings.Builder
	for i, m := range sc.plan {
		marker := "  "
		if i == sc.planNext {
			marker = "->"
		}
		fmt.Fprintf(&sb, "%s %3d: %-12s%s\n", marker, i+1, m.String(), m.ShortDescription())
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) next(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if sc.planNext >= len(sc.plan) {
		return nil, errors.New("no more planned moves")
	}
	m := sc.plan[sc.planNext]
	if err := sc.playMove(m); err != nil {
		return nil, err
	}
	return msg(sc.afterMove(m)), nil
}

func (sc *ShellController) greedyPlayer() *solver.Greedy {
	return solver.NewGreedy(movegen.NewGenerator(),
		heuristic.NewWeightedEvaluator(sc.config.Weights()))
}

func (sc *ShellController) hint(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	seen := map[uint64]bool{sc.game.Fingerprint(): true}
	for _, h := range sc.history {
		seen[h.Fingerprint()] = true
	}
	m, ok := sc.greedyPlayer().Next(sc.game, seen)
	if !ok {
		return msg("no move leads anywhere new"), nil
	}
	return msg("try " + m.String() + " (" + m.ShortDescription() + ")"), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	e := heuristic.NewWeightedEvaluator(sc.config.Weights())
	v := sc.game.View()
	parts := e.Explain(v)
	names := make([]string, 0, len(parts))
	for k := range parts {
		names = append(names, k)
	}
	slices.Sort(names)
	var sb strings.Builder
	for _, k := range names {
		fmt.Fprintf(&sb, "%-14s%8.2f\n", k, parts[k])
	}
	fmt.Fprintf(&sb, "%-14s%8.2f", "total", e.Evaluate(v))
	return msg(sb.String()), nil
}

func (sc *ShellController) greedy(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	maxMoves, err := cmd.options.IntDefault("max", 0)
	if err != nil {
		return nil, err
	}
	res := sc.greedyPlayer().Play(context.Background(), sc.game, maxMoves)
	sc.lastRes = res
	sc.setPlan(res.Moves)
	return msg(resultSummary(res)), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "stop" {
		if !sc.batchRunning() {
			return nil, errors.New("no batch is running")
		}
		sc.autoplayCancel()
		<-sc.autoplayDone
		return msg("stopped"), nil
	}
	if sc.batchRunning() {
		return nil, errBusy
	}
	cfg, err := sc.solverConfig(cmd.options)
	if err != nil {
		return nil, err
	}
	cfg.DrawCount, err = cmd.options.IntDefault("draw", sc.config.GetInt(config.ConfigDrawCount))
	if err != nil {
		return nil, err
	}
	games, err := cmd.options.IntDefault("games", sc.config.GetInt(config.ConfigGames))
	if err != nil {
		return nil, err
	}
	first, err := cmd.options.Uint64Default("seed", sc.config.GetUint64(config.ConfigSeed))
	if err != nil {
		return nil, err
	}
	player := cmd.options.String("player")
	if player == "" {
		player = automatic.SearchPlayer
	}
	// Games run in parallel; each search stays single-threaded.
	threads := max(cfg.Threads, 1)
	cfg.Threads = 1
	opts := []automatic.RunnerOption{automatic.WithPlayer(player), automatic.WithThreads(threads)}

	var logfile *os.File
	if path := cmd.options.String("logfile"); path != "" {
		if logfile, err = os.Create(path); err != nil {
			return nil, err
		}
		opts = append(opts, automatic.WithLogFile(logfile))
	}
	st, err := sc.storeHandle()
	if err != nil {
		return nil, err
	}
	if st != nil {
		opts = append(opts, automatic.WithStore(st))
	}
	runner, err := automatic.NewRunner(cfg, opts...)
	if err != nil {
		if logfile != nil {
			logfile.Close()
		}
		return nil, err
	}

	seeds := automatic.SeedRange(first, games)
	ctx, cancel := context.WithCancel(context.Background())
	sc.autoplayCancel = cancel
	sc.autoplayDone = make(chan struct{})
	go func() {
		defer close(sc.autoplayDone)
		defer cancel()
		if logfile != nil {
			defer logfile.Close()
		}
		sum, err := runner.Run(ctx, seeds)
		if err != nil {
			log.Err(err).Msg("autoplay-failed")
			return
		}
		sc.showMessage(sum.String())
	}()
	return msg(fmt.Sprintf("playing %d games from seed %d with %d threads; `autoplay stop` stops",
		games, first, threads)), nil
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need a log file written by autoplay -logfile")
	}
	out, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

func (sc *ShellController) solveHistory(cmd *shellcmd) (*Response, error) {
	st, err := sc.storeHandle()
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errors.New("no database; set db-path first")
	}
	limit, err := cmd.options.IntDefault("limit", 10)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	recs, err := st.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	totals, err := st.Totals(ctx, cmd.options.String("player"))
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "played %d, won %d, stuck %d\n", totals.Played, totals.Won, totals.Stuck)
	for _, r := range recs {
		fmt.Fprintf(&sb, "%s  seed %-20d %-7s %-12s %4d moves %8d nodes\n",
			r.CreatedAt.Format(time.DateTime), r.Seed, r.Player, r.Outcome, r.Moves, r.Popped)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		keys := sc.config.AllKeys()
		slices.Sort(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%-22s %v\n", k, sc.config.Get(k))
		}
		return msg(sb.String()), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprint(sc.config.Get(key))), nil
	}
	old := sc.config.Get(key)
	sc.config.Set(key, cmd.args[1])
	if err := sc.config.SolverConfig().Validate(); err != nil {
		sc.config.Set(key, old)
		return nil, err
	}
	if key == config.ConfigDBPath && sc.store != nil {
		sc.store.Close()
		sc.store = nil
	}
	return msg("set " + key + " to " + cmd.args[1]), nil
}
