package console

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/ozzus/flight-filter/internal/application/filter"
	"github.com/ozzus/flight-filter/internal/domain/models"
)

type Sink struct {
	out    io.Writer
	title  *color.Color
	detail *color.Color
}

func NewSink(out io.Writer, colored bool) *Sink {
	if out == nil {
		out = os.Stdout
	}

	title := color.New(color.FgCyan, color.Bold)
	detail := color.New(color.FgHiBlack)
	if !colored {
		title.DisableColor()
		detail.DisableColor()
	}

	return &Sink{out: out, title: title, detail: detail}
}

func (s *Sink) Write(ctx context.Context, title string, itineraries []models.Itinerary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.title.Fprintf(s.out, "%s (%d)\n", title, len(itineraries)); err != nil {
		return fmt.Errorf("write title: %w", err)
	}

	for _, it := range itineraries {
		if _, err := fmt.Fprintf(s.out, "  %s ", it.String()); err != nil {
			return fmt.Errorf("write itinerary %s: %w", it.ID, err)
		}
		if _, err := s.detail.Fprintf(s.out, "id=%s ground=%dh\n", it.ID, filter.GroundTimeHours(it)); err != nil {
			return fmt.Errorf("write itinerary %s: %w", it.ID, err)
		}
	}

	return nil
}
