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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Fetcher", func() {
	var (
		ctx      context.Context
		fetcher  *Fetcher
		requests atomic.Int32
		server   *httptest.Server
		failures atomic.Int32
		status   atomic.Int32
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests.Store(0)
		failures.Store(0)
		status.Store(http.StatusServiceUnavailable)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) <= failures.Load() {
				w.WriteHeader(int(status.Load()))
				return
			}
			_, _ = w.Write([]byte(r.URL.Path))
		}))

		fetcher = NewFetcher(time.Second, 3)
		fetcher.Backoff.Duration = time.Millisecond
	})

	AfterEach(func() {
		server.Close()
	})

	It("should retrieve a remote document", func() {
		body, err := fetcher.Fetch(ctx, server.URL+"/address-space.xml")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("/address-space.xml"))
		Expect(requests.Load()).To(BeNumerically("==", 1))
	})

	It("should retry transient failures", func() {
		failures.Store(2)
		body, err := fetcher.Fetch(ctx, server.URL+"/recovered.xml")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("/recovered.xml"))
		Expect(requests.Load()).To(BeNumerically("==", 3))
	})

	It("should give up once the attempts are exhausted", func() {
		failures.Store(10)
		_, err := fetcher.Fetch(ctx, server.URL+"/recovered.xml")

		var statusErr *StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
		Expect(requests.Load()).To(BeNumerically("==", 3))
	})

	It("should not retry permanent failures", func() {
		failures.Store(10)
		status.Store(http.StatusNotFound)
		_, err := fetcher.Fetch(ctx, server.URL+"/missing.xml")
		Expect(err).To(MatchError(ContainSubstring("unexpected status 404")))
		Expect(requests.Load()).To(BeNumerically("==", 1))
	})

	It("should read local documents", func() {
		path := filepath.Join(GinkgoT().TempDir(), "space.xml")
		Expect(os.WriteFile(path, []byte("<registry/>"), 0o600)).To(Succeed())

		body, err := fetcher.Fetch(ctx, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("<registry/>"))
	})

	It("should fail on missing local documents", func() {
		_, err := fetcher.Fetch(ctx, filepath.Join(GinkgoT().TempDir(), "missing.xml"))
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should retrieve multiple documents preserving their order", func() {
		bodies, err := fetcher.FetchAll(ctx, server.URL+"/first", server.URL+"/second", server.URL+"/third")
		Expect(err).NotTo(HaveOccurred())
		Expect(bodies).To(HaveLen(3))
		Expect(string(bodies[0])).To(Equal("/first"))
		Expect(string(bodies[1])).To(Equal("/second"))
		Expect(string(bodies[2])).To(Equal("/third"))
	})

	It("should fail if any document cannot be retrieved", func() {
		_, err := fetcher.FetchAll(ctx, server.URL+"/first", filepath.Join(GinkgoT().TempDir(), "missing.xml"))
		Expect(err).To(HaveOccurred())
	})
})
