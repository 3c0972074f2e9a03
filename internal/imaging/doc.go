// Package imaging loads camera frames and turns them into the inputs of the
// rail search.
//
// It covers frame loading with a path-keyed cache, the binary edge mask
// (grayscale, horizontal Sobel gradient, threshold, dead zones), cropping
// and scaling of detection regions, and the debug overlay that draws the
// search results back onto a frame. All operations work with standard Go
// image.Image types.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The FrameCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for unusable inputs such as:
//   - Empty frames or frames without pixel data
//   - Crop regions outside the frame
//   - File I/O errors during frame loading
//   - Encoding errors during image output
//
// # Performance Considerations
//
// For repeated analysis of the same frame, use FrameCache to avoid redundant
// disk reads. Sequence processing should Evict frames once they are done.
package imaging
