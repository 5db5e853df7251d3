// Package geom holds the small amount of 3D math the physics server needs on
// top of mgl64: rigid transforms, axis aligned boxes and planes.
//
// Bases are column-major [mgl64.Mat3] values whose columns are the local
// X, Y and Z axes expressed in the parent frame.
package geom
