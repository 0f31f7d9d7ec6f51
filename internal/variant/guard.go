package variant

import "strings"

// IsDerivedKey reports whether key already lies under a resolution folder,
// i.e. some segment between the first and the last is a label. Storage
// notifications for such keys must not start another generation.
func IsDerivedKey(key string) bool {
	segs := strings.Split(key, "/")
	for i := 1; i < len(segs)-1; i++ {
		if IsLabel(segs[i]) {
			return true
		}
	}
	return false
}
