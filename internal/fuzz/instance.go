package fuzz

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Instance is a uniquely named file holding one generated problem. It is either
// released (deleted) or retained (handed to the operator), never both.
type Instance struct {
	path     string
	released bool
	retained bool
}

// An Allocator hands out a fresh Instance for every trial.
type Allocator func() (*Instance, error)

// TempAllocator creates instances in dir (the OS temp directory when empty)
// named after pattern, as in os.CreateTemp.
func TempAllocator(dir, pattern string) Allocator {
	return func() (*Instance, error) {
		file, err := os.CreateTemp(dir, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to create instance file: %w", err)
		}
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("failed to close instance file: %w", err)
		}
		return &Instance{path: file.Name()}, nil
	}
}

func (instance *Instance) Path() string {
	return instance.path
}

// Fill truncates the instance and lets write produce its content.
func (instance *Instance) Fill(write func(io.Writer) error) error {
	file, err := os.Create(instance.path)
	if err != nil {
		return fmt.Errorf("failed to open instance file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Release deletes the instance file.
func (instance *Instance) Release() error {
	if instance.retained {
		return errors.New("cannot release a retained instance")
	} else if instance.released {
		return nil
	}
	instance.released = true
	return os.Remove(instance.path)
}

// Retain gives up ownership of the file and returns its path. The file
// outlives the process.
func (instance *Instance) Retain() string {
	instance.retained = true
	return instance.path
}
