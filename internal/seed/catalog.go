// Package seed fills the demo namespace with a fixed set of residents and
// generated daily records.
package seed

import (
	"strconv"
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
)

type profile struct {
	name      string
	kana      string
	birthDate string
	gender    resident.Gender
	careLevel int
	notes     string
}

// Room numbers follow catalog order starting at 101.
var catalog = []profile{
	{"Yamada Taro", "ヤマダ タロウ", "1940-03-15", resident.GenderMale, 3, "Walks with a cane"},
	{"Suzuki Hanako", "スズキ ハナコ", "1938-07-22", resident.GenderFemale, 2, ""},
	{"Sato Ichiro", "サトウ イチロウ", "1942-11-08", resident.GenderMale, 4, "Wheelchair user"},
	{"Tanaka Michiko", "タナカ ミチコ", "1945-01-30", resident.GenderFemale, 2, ""},
	{"Takahashi Kenji", "タカハシ ケンジ", "1939-05-12", resident.GenderMale, 3, "Diabetes"},
	{"Ito Setsuko", "イトウ セツコ", "1941-09-25", resident.GenderFemale, 1, ""},
	{"Watanabe Masao", "ワタナベ マサオ", "1937-12-03", resident.GenderMale, 5, "Bedridden"},
	{"Nakamura Kazuko", "ナカムラ カズコ", "1944-04-18", resident.GenderFemale, 2, ""},
	{"Kobayashi Yoshio", "コバヤシ ヨシオ", "1943-08-07", resident.GenderMale, 3, "Dementia"},
	{"Kato Sachiko", "カトウ サチコ", "1946-02-14", resident.GenderFemale, 1, ""},
	{"Matsumoto Kiyoshi", "マツモト キヨシ", "1940-06-20", resident.GenderMale, 2, "Hypertension"},
	{"Inoue Kumiko", "イノウエ クミコ", "1943-03-11", resident.GenderFemale, 3, ""},
	{"Kimura Masaru", "キムラ マサル", "1938-09-05", resident.GenderMale, 4, "Impaired vision"},
	{"Hayashi Fumiko", "ハヤシ フミコ", "1941-12-28", resident.GenderFemale, 2, ""},
	{"Saito Hiroshi", "サイトウ ヒロシ", "1936-04-17", resident.GenderMale, 5, "Tube feeding"},
	{"Shimizu Yoshie", "シミズ ヨシエ", "1944-08-09", resident.GenderFemale, 1, ""},
	{"Yamaguchi Susumu", "ヤマグチ ススム", "1939-11-23", resident.GenderMale, 3, "Hard of hearing"},
	{"Mori Tatsuko", "モリ タツコ", "1942-02-06", resident.GenderFemale, 2, ""},
	{"Abe Yoshio", "アベ ヨシオ", "1937-07-14", resident.GenderMale, 4, "Parkinson's disease"},
	{"Ikeda Shizuko", "イケダ シズコ", "1945-05-31", resident.GenderFemale, 1, ""},
	{"Hashimoto Osamu", "ハシモト オサム", "1940-10-02", resident.GenderMale, 3, "Osteoporosis"},
	{"Ishikawa Chiyo", "イシカワ チヨ", "1935-01-19", resident.GenderFemale, 5, "Bedridden, pressure ulcer prevention"},
	{"Maeda Takeshi", "マエダ タケシ", "1941-06-27", resident.GenderMale, 2, ""},
	{"Fujita Mitsuko", "フジタ ミツコ", "1943-09-15", resident.GenderFemale, 3, "Rheumatoid arthritis"},
	{"Goto Eiichi", "ゴトウ エイイチ", "1938-12-08", resident.GenderMale, 4, "Dementia"},
	{"Okada Toshiko", "オカダ トシコ", "1946-03-24", resident.GenderFemale, 1, ""},
	{"Murakami Shigeru", "ムラカミ シゲル", "1939-08-13", resident.GenderMale, 3, "History of heart failure"},
	{"Kondo Fumiko", "コンドウ フミコ", "1942-11-30", resident.GenderFemale, 2, ""},
	{"Ishii Tadashi", "イシイ タダシ", "1937-04-05", resident.GenderMale, 4, "After-effects of stroke"},
	{"Sakamoto Akiko", "サカモト アキコ", "1944-07-21", resident.GenderFemale, 2, "Mild hearing loss"},
}

const firstRoom = 101

// Residents returns the demo catalog. Ids are left empty for the store to
// assign.
func Residents() []resident.Resident {
	out := make([]resident.Resident, len(catalog))
	for i, p := range catalog {
		birth, err := time.Parse(time.DateOnly, p.birthDate)
		if err != nil {
			panic("seed: bad birth date in catalog: " + p.birthDate)
		}
		out[i] = resident.Resident{
			Name:       p.name,
			NameKana:   p.kana,
			BirthDate:  birth,
			Gender:     p.gender,
			RoomNumber: roomNumber(i),
			CareLevel:  p.careLevel,
			Notes:      p.notes,
			IsActive:   true,
		}
	}
	return out
}

func roomNumber(i int) string {
	return strconv.Itoa(firstRoom + i)
}
