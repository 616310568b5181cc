// Package geo resolves geolocation and network data for collected addresses.
//
// The resolver issues one HTTP lookup per unique address, all outstanding
// concurrently, and joins the full batch before returning: every address gets
// exactly one result slot, a failed lookup fills its slot with a sentinel
// record, and no failure ever cancels or disturbs a sibling lookup.
package geo
