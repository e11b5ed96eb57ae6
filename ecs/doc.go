// Package ecs bridges garden's frame and resize notifications into a
// [Donburi] world.
//
// [NewDonburiSink] publishes a [garden.FrameEvent] after every update
// broadcast and a [garden.ResizeEvent] after every resize, and keeps a
// singleton [FrameState] entity current so systems can read the latest tick
// and viewport without subscribing.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
