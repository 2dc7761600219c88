package cli

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"fintrack/internal/config"
	"fintrack/internal/models"
	"fintrack/internal/services/settings"
)

// Completion describes the command line for shell completion.
// Install it with COMP_INSTALL=1 fintrack.
func Completion() *complete.Command {
	kinds := predict.Set{"expense", "investment", "crypto"}
	categories := predict.Set{}
	for _, c := range models.Categories {
		categories = append(categories, string(c))
	}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"data-dir": predict.Dirs("*"),
			"backend":  predict.Set{config.BackendFile, config.BackendMemory, config.BackendRedis, config.BackendMongo},
			"plain":    predict.Nothing,
			"debug":    predict.Nothing,
		},
		Sub: map[string]*complete.Command{
			"add": {Flags: map[string]complete.Predictor{
				"kind":     kinds,
				"date":     predict.Something,
				"desc":     predict.Something,
				"amount":   predict.Something,
				"category": categories,
				"type":     predict.Something,
				"profit":   predict.Something,
			}},
			"edit": {Flags: map[string]complete.Predictor{
				"kind":     kinds,
				"id":       predict.Something,
				"date":     predict.Something,
				"desc":     predict.Something,
				"amount":   predict.Something,
				"category": categories,
				"profit":   predict.Something,
			}},
			"delete": {Flags: map[string]complete.Predictor{
				"kind": kinds,
				"id":   predict.Something,
				"y":    predict.Nothing,
			}},
			"list":     {Flags: map[string]complete.Predictor{"kind": append(predict.Set{"all"}, kinds...)}},
			"clear":    {Flags: map[string]complete.Predictor{"kind": kinds, "y": predict.Nothing}},
			"summary":  {Flags: map[string]complete.Predictor{"fetch": predict.Nothing}},
			"prices":   {},
			"export":   {Flags: map[string]complete.Predictor{"o": predict.Files("*.json")}},
			"import":   {Flags: map[string]complete.Predictor{"y": predict.Nothing}, Args: predict.Files("*.json")},
			"theme":    {Args: predict.Set(settings.Themes)},
			"encrypt":  {Flags: map[string]complete.Predictor{"disable": predict.Nothing}},
			"version":  {},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
