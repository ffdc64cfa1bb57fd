// Package special provides the special functions used to set up and
// propagate wave packets: Bessel functions for the Chebychev expansion,
// normalized spherical harmonics for rotational grids, and the generator and
// pulse shape functions that are typically fed into operators and builders.
package special
