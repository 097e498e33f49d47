package stream

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/carousell/ct-go/pkg/logger"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/omniwire/chat-sync/internal/chatstate"
	"github.com/omniwire/chat-sync/internal/config"
	"github.com/omniwire/chat-sync/pkg/util"
)

// StartConsumeEvents wires the chat stream into the session state: one
// client per process lifecycle, one consumer goroutine applying events in
// arrival order.
func StartConsumeEvents(
	lc fx.Lifecycle,
	conf *config.Config,
	session *chatstate.Session,
) error {
	if !conf.Stream.Enabled {
		log.Warnf(context.Background(), "chat stream consumer is disabled in configuration")
		return nil
	}

	metrics, err := util.GetHistogramVec("chat_stream_events_consumed", "status", "type")
	if err != nil {
		return fmt.Errorf("get histogram vec: %w", err)
	}

	client, err := NewClient(conf.Stream)
	if err != nil {
		return fmt.Errorf("new stream client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Connect(ctx); err != nil {
				return err
			}
			log.Infow(ctx, "chat stream connected", "generation", client.Generation())
			go consumeLoop(client, session, metrics)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return nil
}

func consumeLoop(client *Client, session *chatstate.Session, metrics *prometheus.HistogramVec) {
	ctx := context.Background()
	for ev := range client.Events() {
		start := time.Now()
		err := applyEvent(ctx, session, ev)

		code := getCode(err)
		content := "success"
		if err != nil {
			content = err.Error()
		}
		log.Logw(ctx, getLogLevel(code), content,
			"code", code,
			"type", ev.Type,
			"generation", ev.Generation,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		metrics.
			WithLabelValues(code.String(), ev.Type).
			Observe(time.Since(start).Seconds())
	}
}

func applyEvent(ctx context.Context, session *chatstate.Session, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			length := runtime.Stack(stack, false)
			err = fmt.Errorf("PANIC RECOVER: %+v / %s", r, string(stack[:length]))
		}
	}()

	switch {
	case ev.Established != nil:
		return session.ApplySnapshot(ctx, ev.Generation, *ev.Established)
	case ev.NewMessage != nil:
		return session.ApplyNewMessage(ctx, ev.Generation, *ev.NewMessage)
	}
	return fmt.Errorf("event %q has no payload", ev.Type)
}

func getCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	st, ok := status.FromError(err)
	if !ok {
		return status.Code(errors.Unwrap(err))
	}
	return st.Code()
}

func getLogLevel(code codes.Code) logger.Level {
	switch code {
	case codes.OK:
		return logger.InfoLevel
	case codes.Canceled,
		codes.InvalidArgument,
		codes.NotFound,
		codes.AlreadyExists,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.ResourceExhausted,
		codes.FailedPrecondition,
		codes.Aborted,
		codes.Unimplemented,
		codes.OutOfRange:
		return logger.WarnLevel
	default:
		return logger.ErrorLevel
	}
}
