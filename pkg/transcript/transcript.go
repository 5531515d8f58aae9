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

// Package transcript derives the Fiat-Shamir challenges of a proof session.
// All trace commitments are bound into the transcript before any challenge
// used by the permutation or lookup arguments can be drawn; drawing a
// challenge early is a soundness violation the Challenger makes structurally
// impossible, since observations always bind to the next undrawn challenge.
package transcript

import (
	"fmt"

	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
	"github.com/multistark/go-multistark/pkg/field"
	"golang.org/x/crypto/blake2b"
)

// Challenger derives a fixed number of field-element challenges from a
// running transcript of observations.
type Challenger struct {
	fs *fiatshamir.Transcript
	// Challenge identifiers, in draw order.
	ids []string
	// Index of the next challenge to be drawn.
	cursor int
}

// NewChallenger constructs a challenger able to draw the given number of
// challenges.
func NewChallenger(challenges uint) *Challenger {
	hFunc, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	//
	ids := make([]string, challenges)
	for i := range ids {
		ids[i] = fmt.Sprintf("challenge-%d", i)
	}
	//
	return &Challenger{
		fs:  fiatshamir.NewTranscript(hFunc, ids...),
		ids: ids,
	}
}

// Remaining returns the number of challenges not yet drawn.
func (p *Challenger) Remaining() uint {
	return uint(len(p.ids) - p.cursor)
}

// Observe binds raw bytes into the transcript, influencing every challenge
// not yet drawn.
func (p *Challenger) Observe(data []byte) error {
	if p.cursor >= len(p.ids) {
		return fmt.Errorf("all %d challenges already drawn", len(p.ids))
	}
	//
	return p.fs.Bind(p.ids[p.cursor], data)
}

// ObserveElement binds one field element into the transcript.
func (p *Challenger) ObserveElement(el field.Element) error {
	bytes := el.Bytes()
	//
	return p.Observe(bytes[:])
}

// ObserveCommitment hashes the given trace columns into a commitment digest
// and binds it into the transcript.  This stands in for the root of the
// Merkle-style vector commitment the surrounding prover computes over the
// extended columns.
func (p *Challenger) ObserveCommitment(columns ...[]field.Element) error {
	digest, err := CommitColumns(columns...)
	if err != nil {
		return err
	}
	//
	return p.Observe(digest[:])
}

// Challenge draws the next challenge, consuming all observations made since
// the previous draw.
func (p *Challenger) Challenge() (field.Element, error) {
	var el field.Element
	//
	if p.cursor >= len(p.ids) {
		return el, fmt.Errorf("all %d challenges already drawn", len(p.ids))
	}
	//
	bytes, err := p.fs.ComputeChallenge(p.ids[p.cursor])
	if err != nil {
		return el, err
	}
	//
	p.cursor++
	el.SetBytes(bytes)
	//
	return el, nil
}

// Challenges draws n challenges in sequence.
func (p *Challenger) Challenges(n uint) ([]field.Element, error) {
	out := make([]field.Element, n)
	//
	for i := range out {
		var err error
		//
		if out[i], err = p.Challenge(); err != nil {
			return nil, err
		}
	}
	//
	return out, nil
}

// CommitColumns produces a digest binding the given columns, in order.
func CommitColumns(columns ...[]field.Element) ([32]byte, error) {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}
	//
	for _, column := range columns {
		for _, el := range column {
			bytes := el.Bytes()
			hasher.Write(bytes[:])
		}
	}
	//
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	//
	return digest, nil
}
