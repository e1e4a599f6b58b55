package common

import (
	"context"
	"fmt"

	"intervu/internal/errors"
)

// CreateInputFunc defines how to create the operation input from file contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is a generic function signature for a command operation.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunFileCommand encapsulates the common logic for file-based CLI commands.
func RunFileCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	// Pass the logger when creating helpers
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
