// Package atlas builds glyph atlases: single images holding every glyph
// of a character set in a square-ish grid, with per-glyph texture
// coordinates.
//
// The atlas encodes coverage in color channels rather than storing
// colored glyphs. Red marks background, green marks glyph fill and blue
// marks glyph stroke, so a fragment shader can recombine the channels
// with arbitrary runtime colors from one texture:
//
//	result = background*R + fill*G + stroke*B
//
// Build is pure CPU work over a Surface, the rasterization source.
// Uploading the result to a texture is the caller's concern.
package atlas
