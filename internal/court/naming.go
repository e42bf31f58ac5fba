package court

import "fmt"

// RoomName returns the channel name for the n-th court room (1-based).
func RoomName(n int) string {
	return fmt.Sprintf("room-%d", n)
}

// RoleName returns the role name for the n-th court room (1-based).
func RoleName(n int) string {
	return fmt.Sprintf("process-%d", n)
}
