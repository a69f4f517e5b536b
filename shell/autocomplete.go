package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/solitaire/config"
	"github.com/domino14/solitaire/move"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var locationNames = func() []string {
	names := make([]string, move.NumLocations)
	for i := range names {
		names[i] = move.Location(i).String()
	}
	return names
}()

var commandMetadata = map[string]CommandMetadata{
	"deal":     {Options: []string{"-draw"}},
	"solve":    {Options: []string{"-nodes", "-time", "-threads", "-yaml", "-log"}},
	"greedy":   {Options: []string{"-max"}},
	"history":  {Options: []string{"-limit", "-player"}},
	"play":     {Args: locationNames},
	"autoplay": {
		Options: []string{"-games", "-seed", "-player", "-threads", "-draw",
			"-nodes", "-time", "-logfile"},
		Args: []string{"stop"},
	},
	"set": {
		Args: []string{
			config.ConfigNodeBudget, config.ConfigTimeBudget, config.ConfigDrawCount,
			config.ConfigDepthPenalty, config.ConfigThreads, config.ConfigSeed,
			config.ConfigGames, config.ConfigDBPath, config.ConfigWeightsFoundation,
			config.ConfigWeightsFaceUp, config.ConfigWeightsFaceDown,
			config.ConfigWeightsEmptyColumn, config.ConfigWeightsStockWaste,
			config.ConfigWeightsRecycle, config.ConfigWeightsWon,
		},
	},
	"help": {Args: []string{"solve", "autoplay", "layout", "script"}},
}

var commandNames = []string{
	"help", "deal", "load", "export", "show", "moves", "play", "draw",
	"recycle", "undo", "solve", "plan", "next", "hint", "eval", "greedy", "autoplay",
	"analyze", "history", "set", "script", "exit",
}

var optionValues = map[string][]string{
	"draw":   {"1", "3"},
	"player": {"search", "greedy"},
}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unterminated quote
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}
		if strings.HasPrefix(lastCompleteField, "-") {
			completions = optionValues[strings.TrimPrefix(lastCompleteField, "-")]
		}
		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
