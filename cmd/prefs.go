package main

import (
	"context"
	"fmt"

	"github.com/cantus/hymnal/internal/shared"
	"github.com/urfave/cli/v3"
)

// PrefsShow prints the stored display preferences.
func (r *Runner) PrefsShow(ctx context.Context, cmd *cli.Command) error {
	prefs, err := r.prefs.Get()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	r.writePlainHeader("Preferences")
	r.writePlain("Notation scale: %.2f\n", prefs.NotationScale)
	r.writePlain("Text size: %s\n", prefs.TextSize)
	return nil
}

// PrefsSet updates one or both display preferences. The notation scale is
// clamped to its valid range rather than rejected.
func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	changed := false

	if cmd.IsSet("notation-scale") {
		if err := r.prefs.SetNotationScale(cmd.Float("notation-scale")); err != nil {
			return fmt.Errorf("failed to set notation scale: %w", err)
		}
		changed = true
	}

	if size := cmd.String("text-size"); size != "" {
		if err := r.prefs.SetTextSize(size); err != nil {
			return fmt.Errorf("failed to set text size: %w", err)
		}
		changed = true
	}

	if !changed {
		return fmt.Errorf("%w: provide --notation-scale or --text-size", shared.ErrMissingArgument)
	}

	return r.PrefsShow(ctx, cmd)
}
