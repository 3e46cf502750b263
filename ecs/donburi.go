package ecs

import (
	"github.com/phanxgames/liquidglass"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// WidgetEventType carries every event a widget emits through a sink built by
// NewDonburiSink.
var WidgetEventType = events.NewEventType[liquidglass.WidgetEvent]()

// donburiSink queues widget events in a world. A non-nil only set restricts
// which event types are queued.
type donburiSink struct {
	world donburi.World
	only  map[liquidglass.EventType]bool
}

// NewDonburiSink returns a sink that queues widget events on WidgetEventType
// in world. When types are given only those are queued, so a world that
// tracks permission and visibility can skip per-tap ripple traffic. Queued
// events reach subscribers on the next ProcessEvents.
func NewDonburiSink(world donburi.World, types ...liquidglass.EventType) liquidglass.EventSink {
	s := &donburiSink{world: world}
	if len(types) > 0 {
		s.only = make(map[liquidglass.EventType]bool, len(types))
		for _, t := range types {
			s.only[t] = true
		}
	}
	return s
}

func (s *donburiSink) EmitEvent(ev liquidglass.WidgetEvent) {
	if s.only != nil && !s.only[ev.Type] {
		return
	}
	WidgetEventType.Publish(s.world, ev)
}

// OnWidgetEvent subscribes fn to widget events of type typ for the lifetime
// of world.
func OnWidgetEvent(world donburi.World, typ liquidglass.EventType, fn func(donburi.World, liquidglass.WidgetEvent)) {
	WidgetEventType.Subscribe(world, func(w donburi.World, ev liquidglass.WidgetEvent) {
		if ev.Type == typ {
			fn(w, ev)
		}
	})
}
