//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// maxLambdaDepth keeps a single request inside the function timeout.
const maxLambdaDepth = 20

var logger = newLogger(os.Stderr, os.Getenv("PERMUTE_VERBOSE") != "")

// The request body is a spawner file in JSON form, e.g.
//
//	{"seed": "0xA5D779D8831721FD", "mmo": {"base": {"table": "0x...", "count": 10}}}
//
// Adding "path" switches the request from a search to a replay.
func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	sf, err := ParseSpawnerFile([]byte(body))
	if err != nil {
		return errResp(400, "invalid request: "+err.Error())
	}
	if sf.MaxDepth > maxLambdaDepth {
		return errResp(400, fmt.Sprintf("maxDepth %d above %d", sf.MaxDepth, maxLambdaDepth))
	}

	cfg := DefaultConfig()
	cfg.Workers = runtime.NumCPU()

	if len(sf.Path) != 0 {
		res, err := runReplay(sf, sf.Path, cfg, logger)
		var illegal *IllegalAdvanceError
		if errors.As(err, &illegal) {
			return errResp(422, err.Error())
		}
		if err != nil {
			return failure(err)
		}
		return okResp(res.Views())
	}

	res, elapsed, err := runPermute(ctx, sf, cfg, logger)
	if err != nil {
		return failure(err)
	}
	logger.Info("[lambda] permute", "seed", fmt.Sprintf("%016X", uint64(sf.Seed)), "results", res.Len(), "elapsed", elapsed)
	return okResp(PermuteOutput{
		Date:    time.Now().UTC().Format(time.RFC3339),
		Seed:    fmt.Sprintf("%016X", uint64(sf.Seed)),
		Workers: cfg.Workers,
		Results: res.Views(),
		TimeMs:  elapsed.Milliseconds(),
	})
}

// failure maps request-shaped errors to 4xx and everything else to 500.
func failure(err error) (events.LambdaFunctionURLResponse, error) {
	var unknown *UnknownTableError
	switch {
	case errors.As(err, &unknown):
		return errResp(404, err.Error())
	case errors.Is(err, ErrNoWaves), errors.Is(err, ErrBadLink), errors.Is(err, ErrInvariant), errors.Is(err, errNoSpawner):
		return errResp(400, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return errResp(504, "search did not finish in time")
	}
	logger.Error("[lambda] failed", "err", err)
	return errResp(500, err.Error())
}

func okResp(v any) (events.LambdaFunctionURLResponse, error) {
	respJSON, err := json.Marshal(v)
	if err != nil {
		return errResp(500, err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	slog.SetDefault(logger)
	lambda.Start(handler)
}
