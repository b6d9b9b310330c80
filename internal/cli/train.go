package cli

import (
	"log/slog"
	"time"

	"github.com/happyhackingspace/seqtag"
	"github.com/spf13/cobra"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var (
		dataPath   string
		configPath string
		params     []string
		flags      = seqtag.DefaultTrainConfig()
	)

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a model with the averaged perceptron",
		Args:  cobra.ExactArgs(1),
		Example: `  seqtag train model.json --data train.txt
  seqtag train model.json --data train.txt --holdout dev.txt --max-iterations 50
  seqtag train model.json --data train.txt --config ap.yaml -p epsilon=0.001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := args[0]

			config, err := resolveTrainConfig(cmd, configPath, flags, params)
			if err != nil {
				return err
			}

			slog.Info("Training tagger", "data", dataPath, "output", modelPath,
				"max_iterations", config.MaxIterations, "epsilon", config.Epsilon, "seed", config.Seed)
			start := time.Now()
			tg, err := seqtag.Train(dataPath, &config)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := tg.Save(modelPath); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "train.txt", "Path to training data (crfsuite format)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file with training parameters")
	cmd.Flags().StringVar(&flags.HoldoutPath, "holdout", "", "Data scored with the averaged weights after every epoch")
	cmd.Flags().IntVar(&flags.MaxIterations, "max-iterations", flags.MaxIterations, "Maximum number of epochs")
	cmd.Flags().Float64Var(&flags.Epsilon, "epsilon", flags.Epsilon, "Stop when the mean per-instance loss drops below this value")
	cmd.Flags().Int64Var(&flags.Seed, "seed", flags.Seed, "Seed for shuffling the training instances")
	cmd.Flags().Int64Var(&flags.MemoryLimit, "memory-limit", flags.MemoryLimit, "Byte budget for training buffers (0 = unlimited)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Training parameter as name=value (repeatable)")
	return cmd
}

// resolveTrainConfig layers defaults, the YAML file, explicitly set flags and
// -p parameters, in that order.
func resolveTrainConfig(cmd *cobra.Command, configPath string, flags seqtag.TrainConfig, params []string) (seqtag.TrainConfig, error) {
	config := seqtag.DefaultTrainConfig()
	if configPath != "" {
		var err error
		if config, err = seqtag.LoadTrainConfig(configPath); err != nil {
			return config, err
		}
		slog.Debug("Loaded training config", "path", configPath)
	}

	fs := cmd.Flags()
	if fs.Changed("holdout") {
		config.HoldoutPath = flags.HoldoutPath
	}
	if fs.Changed("max-iterations") {
		config.MaxIterations = flags.MaxIterations
	}
	if fs.Changed("epsilon") {
		config.Epsilon = flags.Epsilon
	}
	if fs.Changed("seed") {
		config.Seed = flags.Seed
	}
	if fs.Changed("memory-limit") {
		config.MemoryLimit = flags.MemoryLimit
	}

	for _, p := range params {
		if err := config.Set(p); err != nil {
			return config, err
		}
	}
	return config, config.Validate()
}
