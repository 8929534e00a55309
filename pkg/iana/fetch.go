// Copyright 2019-2025 The Liqo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package iana

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"
	"k8s.io/klog/v2"
)

// StatusError is returned when a registry server answers with a non-success status code.
type StatusError struct {
	Location   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s) retrieving %q", e.StatusCode, http.StatusText(e.StatusCode), e.Location)
}

// Retriable returns whether the request may succeed if repeated.
func (e *StatusError) Retriable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Fetcher retrieves registry documents from HTTP(S) URLs or local paths.
type Fetcher struct {
	Client *http.Client
	// Backoff drives the retries of failed HTTP requests. Its Steps field is the number of attempts.
	Backoff wait.Backoff
	// Timeout bounds each attempt.
	Timeout time.Duration
}

// NewFetcher returns a fetcher performing up to attempts tries, each one bounded by timeout.
func NewFetcher(timeout time.Duration, attempts int) *Fetcher {
	return &Fetcher{
		Client: http.DefaultClient,
		Backoff: wait.Backoff{
			Steps:    attempts,
			Duration: 500 * time.Millisecond,
			Factor:   2,
			Jitter:   0.1,
		},
		Timeout: timeout,
	}
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns the content of the document at location.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !isRemote(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", location, err)
		}
		return data, nil
	}

	retriable := func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		if statusErr := (*StatusError)(nil); errors.As(err, &statusErr) {
			return statusErr.Retriable()
		}
		klog.V(4).Infof("Error retrieving %q: %v. Retrying...", location, err)
		return true
	}

	var body []byte
	err := retry.OnError(f.Backoff, retriable, func() error {
		var err error
		body, err = f.get(ctx, location)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %q: %w", location, err)
	}

	klog.Infof("Retrieved %q (%d bytes)", location, len(body))
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, location string) ([]byte, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, http.NoBody)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Location: location, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// FetchAll retrieves the documents concurrently, returning their contents in the order of the locations.
// The first failure cancels the other retrievals.
func (f *Fetcher) FetchAll(ctx context.Context, locations ...string) ([][]byte, error) {
	bodies := make([][]byte, len(locations))

	errGroup, ctx := errgroup.WithContext(ctx)
	for i := range locations {
		errGroup.Go(func() error {
			body, err := f.Fetch(ctx, locations[i])
			if err != nil {
				return err
			}
			bodies[i] = body
			return nil
		})
	}

	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	return bodies, nil
}
