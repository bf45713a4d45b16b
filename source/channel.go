/*
 * Copyright 2025 The EventFlux Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package source

import (
	"context"
	"sync"
)

// ChannelSource adapts an existing Go channel of encoded messages into a
// Source, the shape this package's tests feed records through without
// standing up a real network endpoint. ValidateConnectivity
// always succeeds — the channel is assumed already wired by its owner.
type ChannelSource struct {
	Messages <-chan []byte

	Counters Counters

	mu     sync.Mutex
	stopCh chan struct{}
}

func NewChannelSource(messages <-chan []byte) *ChannelSource {
	return &ChannelSource{Messages: messages}
}

func (s *ChannelSource) ValidateConnectivity(ctx context.Context) error {
	return nil
}

func (s *ChannelSource) Start(ctx context.Context, cb Callback) error {
	s.mu.Lock()
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			return nil
		case msg, ok := <-s.Messages:
			if !ok {
				return nil
			}
			s.Counters.IncReceived()
			if err := cb(msg); err != nil {
				s.Counters.IncErrors()
			}
		}
	}
}

func (s *ChannelSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	return nil
}
