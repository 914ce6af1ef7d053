// Package colorsafe encodes arbitrary binary data into a sequence of
// printable page images made of colored dots, and decodes scans of
// those pages back into the original bytes. It is meant for long-term
// paper archival: the printed pages carry their own Reed-Solomon error
// correction and self-describing metadata; decoding a scan needs only
// the colorDepth and sector geometry it was encoded with.
//
// Encode and Decode are the package's two entry points; everything
// else (dot codec, Reed-Solomon, sector/page assembly, rasterization,
// segmentation) lives under internal and is composed here.
package colorsafe
