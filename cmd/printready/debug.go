package main

import (
	"go.uber.org/zap"

	printready "github.com/alnah/go-printready"
)

// subscribeDebug logs every render event at debug level.
func subscribeDebug(r Renderer, log *zap.Logger) error {
	for _, name := range printready.SupportedEvents() {
		if _, err := r.On(name, func(ev printready.Event) {
			log.Debug("event", eventFields(ev)...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func eventFields(ev printready.Event) []zap.Field {
	fields := []zap.Field{zap.String("event", ev.Name)}
	if ev.URL != "" {
		fields = append(fields, zap.String("url", ev.URL))
	}
	if p := ev.Page; p != nil {
		fields = append(fields,
			zap.String("page", p.ID),
			zap.Int("position", p.Position),
			zap.Float64("width", p.MediaBox.Width),
			zap.Float64("height", p.MediaBox.Height),
		)
		if p.BreakBefore != "" {
			fields = append(fields, zap.String("breakBefore", p.BreakBefore))
		}
	}
	if s := ev.Size; s != nil {
		fields = append(fields, zap.Any("size", s))
	}
	if ev.Message != "" {
		fields = append(fields, zap.String("message", ev.Message))
	}
	if o := ev.Outcome; o != nil {
		fields = append(fields, zap.Int("pages", o.PageCount), zap.Duration("elapsed", o.Elapsed))
	}
	if ev.Bytes > 0 {
		fields = append(fields, zap.Int("bytes", ev.Bytes))
	}
	return fields
}
