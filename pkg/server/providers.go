package server

import (
	"net/http"
	"sort"
)

// ProviderInfo describes one registered bundle provider.
type ProviderInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListProvidersRes is the response type for GET /api/list/providers.
type ListProvidersRes struct {
	Providers []ProviderInfo `json:"providers"`
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	descriptions := s.providers.Descriptions()
	infos := make([]ProviderInfo, 0, len(descriptions))
	for name, desc := range descriptions {
		infos = append(infos, ProviderInfo{Name: name, Description: desc})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	writeJSON(w, ListProvidersRes{Providers: infos})
}
