// Package shell is the interactive front end: deal or load a game, play
// it by hand, and hand it to the solver or the greedy player.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/solitaire/config"
	"github.com/domino14/solitaire/game"
	"github.com/domino14/solitaire/move"
	"github.com/domino14/solitaire/solver"
	"github.com/domino14/solitaire/store"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please deal or load a game first")
	errBusy              = errors.New("a batch is running; use `autoplay stop` first")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l      *readline.Instance
	config *config.Config

	game *game.Game
	// history holds the positions before each move, for undo.
	history []*game.Game
	// lastMoves is what the moves command listed, for play by number.
	lastMoves []move.Move

	plan     move.List
	planNext int
	// planBase is len(history) when the plan was made.
	planBase int
	lastRes  *solver.Result

	store *store.Store

	autoplayCancel context.CancelFunc
	autoplayDone   chan struct{}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func NewShellController(cfg *config.Config) *ShellController {
	sc := &ShellController{config: cfg}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32msolitaire>\033[0m ",
		HistoryFile:     "/tmp/solitaire_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out())
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) out() io.Writer {
	if sc.l == nil {
		return os.Stdout
	}
	return sc.l.Stderr()
}

// extractFields splits a line into a command, its positional arguments
// and its -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") && !isNumber(fields[i]) {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := fields[i][1:]
			options[key] = append(options[key], fields[i+1])
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func (sc *ShellController) storeHandle() (*store.Store, error) {
	if sc.store != nil {
		return sc.store, nil
	}
	path := sc.config.GetString(config.ConfigDBPath)
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	sc.store = st
	return st, nil
}

// dispatch runs one command. It returns the response to show; a nil
// response shows nothing.
func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "help":
		return sc.help(cmd)
	case "deal", "new":
		return sc.deal(cmd)
	case "load":
		return sc.load(cmd)
	case "export":
		return sc.export(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "moves", "gen":
		return sc.moves(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "draw", "d":
		return sc.play(&shellcmd{cmd: "play", args: []string{"S", "W"}})
	case "recycle":
		return sc.play(&shellcmd{cmd: "play", args: []string{"W", "S"}})
	case "undo", "u":
		return sc.undo(cmd)
	case "solve":
		return sc.solve(cmd)
	case "plan":
		return sc.showPlan(cmd)
	case "next", "n":
		return sc.next(cmd)
	case "hint":
		return sc.hint(cmd)
	case "eval":
		return sc.eval(cmd)
	case "greedy":
		return sc.greedy(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "history":
		return sc.solveHistory(cmd)
	case "set":
		return sc.set(cmd)
	case "script":
		return sc.script(cmd)
	}
	return nil, fmt.Errorf("command %q not found", cmd.cmd)
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) error {
	cmd, err := extractFields(line)
	if err != nil {
		if err == errNoData {
			return nil
		}
		return err
	}
	if cmd.cmd == "exit" {
		sig <- syscall.SIGINT
		return errors.New("sending quit signal")
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

// Execute runs one line non-interactively.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if err := sc.standardModeSwitch(line, sig); err != nil {
		log.Error().Err(err).Msg("")
	}
	// A batch started from the command line should finish before exit.
	if sc.autoplayDone != nil {
		<-sc.autoplayDone
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.standardModeSwitch(line, sig); err != nil {
			log.Error().Err(err).Msg("")
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops a running batch and closes the store.
func (sc *ShellController) Cleanup() {
	if sc.autoplayCancel != nil {
		sc.autoplayCancel()
		<-sc.autoplayDone
	}
	if sc.store != nil {
		if err := sc.store.Close(); err != nil {
			log.Err(err).Msg("closing-store")
		}
	}
}

func (sc *ShellController) batchRunning() bool {
	if sc.autoplayDone == nil {
		return false
	}
	select {
	case <-sc.autoplayDone:
		return false
	default:
		return true
	}
}

func (sc *ShellController) solverConfig(options CmdOptions) (solver.Config, error) {
	cfg := sc.config.SolverConfig()
	var err error
	if cfg.NodeBudget, err = options.IntDefault("nodes", cfg.NodeBudget); err != nil {
		return cfg, err
	}
	if cfg.Threads, err = options.IntDefault("threads", cfg.Threads); err != nil {
		return cfg, err
	}
	if t := options.String("time"); t != "" {
		if cfg.TimeBudget, err = options.Duration("time"); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// setGame replaces the current game and forgets everything tied to the
// old one.
func (sc *ShellController) setGame(g *game.Game) {
	sc.game = g
	sc.history = nil
	sc.lastMoves = nil
	sc.clearPlan()
	sc.lastRes = nil
}

func (sc *ShellController) setPlan(moves move.List) {
	sc.plan = moves
	sc.planNext = 0
	sc.planBase = len(sc.history)
}

func (sc *ShellController) clearPlan() {
	sc.plan = nil
	sc.planNext = 0
	sc.planBase = 0
}
