package ddo

// MetaData describes one published asset.
type MetaData struct {
	Base                  MetaDataBase           `json:"base"`
	Curation              *Curation              `json:"curation,omitempty"`
	AdditionalInformation map[string]interface{} `json:"additionalInformation,omitempty"`
}

// MetaDataBase is the required descriptive core of an asset.
type MetaDataBase struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"` // dataset | algorithm
	Description    string   `json:"description,omitempty"`
	DateCreated    string   `json:"dateCreated"`
	Author         string   `json:"author"`
	License        string   `json:"license"`
	Price          uint64   `json:"price"`
	Files          []File   `json:"files,omitempty"`
	EncryptedFiles string   `json:"encryptedFiles,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// File describes one downloadable artifact of an asset. URLs never leave the
// publisher unencrypted; consumers see only the encrypted form.
type File struct {
	Index         int    `json:"index"`
	URL           string `json:"url,omitempty"`
	Checksum      string `json:"checksum,omitempty"`
	ContentType   string `json:"contentType,omitempty"`
	ContentLength uint64 `json:"contentLength,omitempty"`
}

// Curation carries community quality signals.
type Curation struct {
	Rating   float64 `json:"rating"`
	NumVotes int     `json:"numVotes"`
}
