package report

// PriorStreaks computes, for every entity present in the most recent
// historical snapshot, how many consecutive immediately-preceding days it
// appeared in the segment's top-N.
//
// history is the segment's historical name lists, most recent first, already
// normalized and bounded to the configured depth. The walk starts at 1 for
// yesterday and increments for each earlier consecutive day, stopping at the
// first day the entity is absent.
//
// 오늘 등장할 종목의 표시 스트릭은 (여기서 계산한 값 + 1); 어제 미등장
// 종목은 결과에 포함되지 않으므로 오늘 등장 시 스트릭 1로 시작한다.
func PriorStreaks(history [][]string) map[string]int {
	streaks := make(map[string]int)
	if len(history) == 0 {
		return streaks
	}

	// Membership sets for the earlier days
	earlier := make([]map[string]struct{}, 0, len(history)-1)
	for _, names := range history[1:] {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		earlier = append(earlier, set)
	}

	for _, name := range history[0] {
		if _, dup := streaks[name]; dup {
			continue
		}

		count := 1 // present yesterday
		for _, day := range earlier {
			if _, ok := day[name]; !ok {
				break // 연속 끊김
			}
			count++
		}
		streaks[name] = count
	}

	return streaks
}
