package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/happyhackingspace/seqtag"
	"github.com/happyhackingspace/seqtag/crf"
	"github.com/spf13/cobra"
)

func (c *CLI) newTagCommand() *cobra.Command {
	var (
		modelPath string
		test      bool
		reference bool
	)

	cmd := &cobra.Command{
		Use:   "tag <datafile>",
		Short: "Tag sequences in a crfsuite-format file",
		Args:  cobra.ExactArgs(1),
		Example: `  # Print predicted labels, one per line
  seqtag tag test.txt --model model.json

  # Print gold and predicted labels side by side
  seqtag tag test.txt --model model.json --reference

  # Report accuracy and per-label scores
  seqtag tag test.txt --model model.json --test`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataPath := args[0]

			start := time.Now()
			tg, err := seqtag.Load(modelPath)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "path", modelPath, "labels", len(tg.Labels()), "duration", time.Since(start))

			out := cmd.OutOrStdout()
			if test {
				e, err := tg.Evaluate(dataPath)
				if err != nil {
					return err
				}
				printEvaluation(out, e)
				return nil
			}

			start = time.Now()
			pred, ref, err := tg.TagFile(dataPath)
			if err != nil {
				return err
			}
			slog.Debug("Tagging completed", "sequences", len(pred), "duration", time.Since(start))
			printLabels(out, pred, ref, reference)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "model.json", "Path to model file")
	cmd.Flags().BoolVarP(&test, "test", "t", false, "Report performance against the labels in the data")
	cmd.Flags().BoolVarP(&reference, "reference", "r", false, "Print the gold label before each prediction")
	return cmd
}

func printLabels(w io.Writer, pred, ref [][]string, withRef bool) {
	for i, seq := range pred {
		for t, label := range seq {
			if withRef {
				fmt.Fprintf(w, "%s\t%s\n", ref[i][t], label)
			} else {
				fmt.Fprintln(w, label)
			}
		}
		fmt.Fprintln(w)
	}
}

func printEvaluation(w io.Writer, e *crf.Evaluation) {
	fmt.Fprintf(w, "Performance by label (#match, #model, #ref) (precision, recall, F1):\n")
	for _, s := range e.Labels {
		fmt.Fprintf(w, "    %s: (%d, %d, %d) (%.4f, %.4f, %.4f)\n",
			s.Label, s.Match, s.Predicted, s.Reference, s.Precision, s.Recall, s.F1)
	}
	fmt.Fprintf(w, "Macro-average precision, recall, F1: (%f, %f, %f)\n",
		e.MacroPrecision(), e.MacroRecall(), e.MacroF1())
	fmt.Fprintf(w, "Item accuracy: %d / %d (%.4f)\n", e.ItemCorrect, e.ItemTotal, e.ItemAccuracy())
	fmt.Fprintf(w, "Instance accuracy: %d / %d (%.4f)\n", e.InstanceCorrect, e.InstanceTotal, e.InstanceAccuracy())
}
