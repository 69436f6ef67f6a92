package models

import "time"

// RootFolder to domyślny, wirtualny folder najwyższego poziomu. Nie ma
// własnego rekordu w bazie - pliki i foldery odwołują się do niego po nazwie.
const RootFolder = "root"

type Folder struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Parent    string    `json:"parent"`
	CreatedAt time.Time `json:"created_at"`
}
