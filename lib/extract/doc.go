// Package extract implements the extraction of a time filtered subset of a space
// time raster dataset into a new dataset.
//
// Pipeline:
//
//  1. Resolution and guard. Bare names are qualified with Options.Mapset. The run
//     fails if the input dataset is missing, if an expression is given without a
//     base name, or if the output exists and Options.Overwrite is not set. Nothing
//     is modified before these checks passed.
//  2. Selection. The maps registered to the input that match Options.Where,
//     ordered by start time.
//  3. Output preparation. An existing output is removed (its maps are kept) and
//     the output is created with the temporal type, semantic type, title and
//     description of the input.
//  4. Loop. Without expression every selected map is registered into the output
//     unchanged. With expression the k-th selected map produces the map
//     "{base}_{k}@{mapset}" through r.mapcalc; it inherits the timestamp of its
//     source map and is registered into the output.
//  5. Finalization. The extent of the output is computed from its registered maps.
//     This also happens if no map was selected or the loop was stopped.
//
// Per map outcomes in derive mode:
//
//	name taken, no overwrite   logged, map skipped
//	r.mapcalc fails            logged, loop stopped (Result.Aborted)
//	only null cells            skipped unless Options.RegisterNull
//
// Expression substitution:
//
// Within the expression, raster name tokens equal to the input dataset id, or to
// its bare name, are replaced by the id of the current source map (see Substitute).
// With input precip@user1 and source map precip_3@user1, the expression
// "if(precip > 10, precip, null())" with base "wet" yields the statement
//
//	wet_3 = if(precip_3@user1 > 10, precip_3@user1, null())
//
// The package does not own the store: callers open and close it.
package extract
