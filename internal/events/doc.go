// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events mirrors conversation store changes onto a watermill
// message bus.
//
// A store observer built with Observer turns every change into an Event
// and hands it to a Sink. WatermillSink publishes events as JSON messages;
// Bus provides an in-process gochannel pub/sub with handler routing so
// other components (the event log, tests, future exporters) can follow a
// session without touching the store.
//
//	bus, _ := events.NewBus()
//	store.Subscribe(events.Observer(events.NewWatermillSink(bus.Publisher(), events.TopicStore)))
//	bus.AddHandler("log", events.TopicStore, events.LogHandler(log.Logger))
//	go bus.Run(ctx)
package events
