// Package network holds named concept networks and the operations that grow
// and arrange them.
//
// A [State] is the whole persisted application state: every [Network] plus
// the id of the active one. The [Service] applies word operations to the
// active network and persists each change through a [Store]:
//
//   - AddWord places a new word (the first one at the canvas center) and
//     fetches its explanation.
//   - ExpandWord asks the generator for related concepts, links the ones that
//     already exist and places the new ones around the expanded word.
//   - Organize runs the radial layout over the whole network.
//
// Mutations are serialised by the service. Generator calls run outside the
// lock; the state is reloaded before their results are applied.
package network
