// Package ecs provides ECS adapters for liquidglass's widget event stream.
//
// The primary adapter is [NewDonburiSink], which bridges widget events
// (ripple spawn and expiry, permission changes, viewport visibility, mount
// lifecycle) into a [Donburi] world as typed events. Subscribe to
// [WidgetEventType] in your ECS systems to receive them, or use
// [OnWidgetEvent] to receive a single event type. Passing event types to
// [NewDonburiSink] keeps everything else out of the world.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world, liquidglass.EventPermissionChanged)
//	ecs.OnWidgetEvent(world, liquidglass.EventPermissionChanged, onPermission)
//	w, err := liquidglass.NewWidget(cfg, liquidglass.WithEventSink(sink))
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
