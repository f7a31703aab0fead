// Package main provides the SimpleAI command line interface.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/GabrielDeml/simpleaiv2-sub001/backend/gonum"
	"github.com/GabrielDeml/simpleaiv2-sub001/dataset"
	"github.com/GabrielDeml/simpleaiv2-sub001/designer"
	"github.com/GabrielDeml/simpleaiv2-sub001/ml"
)

const version = "v0.1.0-dev"

func main() {
	root := &cobra.Command{
		Use:           "simpleai",
		Short:         "Build and train small neural networks from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(datasetsCmd(), summaryCmd(), trainCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// datasetsCmd lists the built-in datasets.
func datasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List available datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := dataset.NewDefaultRegistry()

			var data [][]string
			for _, name := range reg.Names() {
				ds, err := reg.Get(name)
				if err != nil {
					return err
				}
				meta := ds.Metadata()
				shape := make([]string, len(meta.InputShape))
				for i, d := range meta.InputShape {
					shape[i] = strconv.Itoa(d)
				}
				data = append(data, []string{
					meta.Name,
					strings.Join(shape, "x"),
					strconv.Itoa(meta.NumClasses),
					strconv.Itoa(meta.TrainSize),
					strconv.Itoa(meta.TestSize),
					meta.Description,
				})
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"NAME", "INPUT", "CLASSES", "TRAIN", "TEST", "DESCRIPTION"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}
}

// summaryCmd prints the layer table and parameter estimate of an
// architecture without training it.
func summaryCmd() *cobra.Command {
	var (
		datasetName string
		hidden      []int
		dropout     float64
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the parameter and memory estimate of an architecture",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := dataset.NewDefaultRegistry()
			ds, err := reg.Get(datasetName)
			if err != nil {
				return err
			}
			a, err := buildArchitecture(ds.Metadata(), hidden, dropout)
			if err != nil {
				return err
			}
			printSummary(a)
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetName, "dataset", "shapes", "dataset the model is sized for")
	cmd.Flags().IntSliceVar(&hidden, "hidden", []int{128}, "hidden dense layer sizes")
	cmd.Flags().Float64Var(&dropout, "dropout", 0, "dropout rate after each hidden layer (0 disables)")
	return cmd
}

// trainCmd loads a dataset, compiles an architecture and runs a training
// loop, printing per-epoch metrics. Interrupting with Ctrl-C stops after the
// running epoch.
func trainCmd() *cobra.Command {
	var (
		datasetName  string
		hidden       []int
		dropout      float64
		epochs       int
		batchSize    int
		learningRate float64
		optimizer    string
		seed         int64
		noShuffle    bool
		trainRatio   float64
		testRatio    float64
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg := dataset.NewDefaultRegistry()
			ds, err := reg.Get(datasetName)
			if err != nil {
				return err
			}

			backend := gonum.New(seed)
			opts := []dataset.LoadOption{
				dataset.WithSeed(seed),
				dataset.WithTrainSampleRatio(trainRatio),
				dataset.WithTestSampleRatio(testRatio),
			}
			if noShuffle {
				opts = append(opts, dataset.WithoutShuffle())
			}
			slog.Info("loading dataset", "name", datasetName)
			tensors, err := ds.LoadTensors(ctx, backend, opts...)
			if err != nil {
				return err
			}
			defer tensors.Release()

			a, err := buildArchitecture(ds.Metadata(), hidden, dropout)
			if err != nil {
				return err
			}
			printSummary(a)

			result, err := designer.Compile(a, backend, designer.CompileOptions{
				Optimizer: ml.OptimizerConfig{Name: optimizer, LearningRate: learningRate},
			})
			if err != nil {
				return err
			}
			defer result.Model.Release()
			for _, w := range result.Warnings {
				slog.Warn(w)
			}

			var stop ml.StopFlag
			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(interrupts)
			go func() {
				<-interrupts
				slog.Info("stopping after the current epoch")
				stop.Halt()
			}()

			history, err := result.Model.Fit(ctx, tensors.TrainImages, tensors.TrainLabels, ml.FitConfig{
				Epochs:      epochs,
				BatchSize:   batchSize,
				ValidationX: tensors.TestImages,
				ValidationY: tensors.TestLabels,
				Stop:        &stop,
				OnEpochEnd: func(met ml.EpochMetrics) {
					fmt.Printf("epoch %d/%d  loss=%.4f  acc=%.4f  val_loss=%.4f  val_acc=%.4f\n",
						met.Epoch+1, epochs, met.Loss, met.Accuracy, met.ValLoss, met.ValAccuracy)
				},
			})
			if err != nil {
				return err
			}
			if len(history) < epochs {
				fmt.Printf("stopped early after %d of %d epochs\n", len(history), epochs)
			}

			final, err := result.Model.Evaluate(ctx, tensors.TestImages, tensors.TestLabels)
			if err != nil {
				return err
			}
			fmt.Printf("test  loss=%.4f  acc=%.4f\n", final.Loss, final.Accuracy)
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetName, "dataset", "shapes", "dataset to train on")
	cmd.Flags().IntSliceVar(&hidden, "hidden", []int{128}, "hidden dense layer sizes")
	cmd.Flags().Float64Var(&dropout, "dropout", 0, "dropout rate after each hidden layer (0 disables)")
	cmd.Flags().IntVar(&epochs, "epochs", 10, "training epochs")
	cmd.Flags().IntVar(&batchSize, "batch-size", 32, "mini-batch size")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0.001, "optimizer learning rate")
	cmd.Flags().StringVar(&optimizer, "optimizer", "adam", "optimizer (adam or sgd)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "seed for shuffling, weight init and dropout")
	cmd.Flags().BoolVar(&noShuffle, "no-shuffle", false, "disable example shuffling")
	cmd.Flags().Float64Var(&trainRatio, "train-ratio", 1, "fraction of training examples to use")
	cmd.Flags().Float64Var(&testRatio, "test-ratio", 1, "fraction of test examples to use")
	return cmd
}

// buildArchitecture assembles input, hidden dense (with optional dropout)
// and softmax output layers sized for the dataset.
func buildArchitecture(meta dataset.Metadata, hidden []int, dropout float64) (*designer.Architecture, error) {
	a := designer.New(meta.ExampleSize(), meta.NumClasses)
	for _, units := range hidden {
		if err := a.Add(designer.NewDense(units, ml.ActivationReLU)); err != nil {
			return nil, err
		}
		if dropout > 0 {
			if err := a.Add(designer.NewDropout(dropout)); err != nil {
				return nil, err
			}
		}
	}
	if err := a.Add(designer.NewDense(meta.NumClasses, ml.ActivationSoftmax)); err != nil {
		return nil, err
	}
	if !a.Valid() {
		var msgs []string
		for _, v := range a.Violations() {
			if !v.Warning {
				msgs = append(msgs, v.Message)
			}
		}
		if len(msgs) > 0 {
			return nil, fmt.Errorf("invalid architecture: %s", strings.Join(msgs, "; "))
		}
	}
	return a, nil
}

func printSummary(a *designer.Architecture) {
	summary := a.Summary()

	var data [][]string
	for _, layer := range summary.Layers {
		units := "-"
		if layer.Units > 0 {
			units = strconv.Itoa(layer.Units)
		}
		data = append(data, []string{string(layer.Type), units, strconv.FormatInt(layer.Params, 10)})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"LAYER", "UNITS", "PARAMS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	fmt.Printf("total params: %d\n", summary.TotalParams)
	fmt.Printf("estimated memory: %d bytes\n", summary.MemoryBytes)
}
