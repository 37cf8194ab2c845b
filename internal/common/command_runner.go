package common

import (
	"context"
	"fmt"
	"io"

	"keyplan/internal/errors"
	"keyplan/internal/semantic"
)

// CreateInputFunc builds the operation input from file contents
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc logs the start of an operation
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs the command's work. Usage is nil when no model was
// called.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, *semantic.Usage, error)

// Runner holds the collaborators shared by file-based commands
type Runner struct {
	Logger *errors.Logger
	Stdout io.Writer
}

// RunCommand reads the files in args, builds the input, runs the operation
// and writes its formatted output.
func RunCommand[Input, Output any](
	ctx context.Context,
	runner Runner,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	logger := runner.Logger
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	fileProcessor := NewFileProcessor(logger, cmdConfig.MaxFileSize)
	outputHandler := NewOutputHandler(logger)
	if runner.Stdout != nil {
		outputHandler = NewOutputHandlerWithWriter(logger, runner.Stdout)
	}

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, usage, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if usage != nil {
		logger.Info("AI token usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
