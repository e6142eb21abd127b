package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func CustomerID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("customer_id", id)
}

func SubscriptionID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("subscription_id", id)
}

// Plan records a plan tier name.
func Plan(name string) slog.Attr {
	return slog.String("plan", name)
}

// Status records a subscription status, or a transition when from is set.
func Status(from, to string) slog.Attr {
	if from == "" {
		return slog.String("status", to)
	}
	return slog.Group("status", slog.String("from", from), slog.String("to", to))
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
