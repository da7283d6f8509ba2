package tomtom

// searchResponse is the TomTom fuzzy search API response.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Address  resultAddress  `json:"address"`
	Position resultPosition `json:"position"`
}

type resultAddress struct {
	FreeformAddress string `json:"freeformAddress"`
	Country         string `json:"country"`
}

type resultPosition struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// errorResponse is the TomTom search API error body.
type errorResponse struct {
	Message       string `json:"message"`
	DetailedError struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"detailedError"`
}
