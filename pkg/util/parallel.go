// Copyright go-multistark authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package util provides small helpers shared across the proving pipeline.
package util

// ForkJoin executes the given jobs concurrently and waits for all of them to
// complete, returning every error encountered.  Jobs must not share mutable
// state; the join barrier is the only synchronization provided.
func ForkJoin(jobs ...func() error) []error {
	var (
		errors []error
		// Communication channel for job outcomes.
		ch = make(chan error, len(jobs))
	)
	// Dispatch all jobs.
	for _, job := range jobs {
		go func(job func() error) {
			ch <- job()
		}(job)
	}
	// Collect all outcomes.
	for range jobs {
		if err := <-ch; err != nil {
			errors = append(errors, err)
		}
	}
	// Done
	return errors
}

// ForkJoinMap applies fn concurrently to every index in [0, n), collecting
// the results in index order.  A join barrier separates dispatch from use of
// the results.
func ForkJoinMap[T any](n uint, fn func(uint) T) []T {
	var (
		results = make([]T, n)
		// Completion channel, one token per job.
		ch = make(chan struct{}, n)
	)
	//
	for i := uint(0); i < n; i++ {
		go func(i uint) {
			results[i] = fn(i)
			ch <- struct{}{}
		}(i)
	}
	//
	for i := uint(0); i < n; i++ {
		<-ch
	}
	// Done
	return results
}
