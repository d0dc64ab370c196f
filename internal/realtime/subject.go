package realtime

import (
	"fmt"
	"strconv"
	"strings"
)

// flowSubject is "tenant.<tid>.endpoint.<endpointID>.flow".
func flowSubject(tenantID string, endpointID uint) string {
	return fmt.Sprintf("tenant.%s.endpoint.%d.flow", tenantID, endpointID)
}

func flowWildcard(tenantID string) string {
	return fmt.Sprintf("tenant.%s.endpoint.*.flow", tenantID)
}

// parseEndpointIDFromSubject extracts endpointID from "tenant.<tid>.endpoint.<endpointID>.flow"
func parseEndpointIDFromSubject(subject string) (uint, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 5 {
		return 0, fmt.Errorf("expected 5 parts, got %d", len(parts))
	}
	if parts[0] != "tenant" || parts[2] != "endpoint" || parts[4] != "flow" {
		return 0, fmt.Errorf("unexpected subject layout %q", subject)
	}
	id, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid endpoint id %q: %w", parts[3], err)
	}
	return uint(id), nil
}
